package ranking

import (
	"regexp"
	"strings"
)

var (
	parenRe = regexp.MustCompile(`\([^)]*\)`)
	punctRe = regexp.MustCompile(`[^\w\s]`)
	wordRe  = regexp.MustCompile(`\w+`)
)

// NormalizeTitle lowercases a section title and strips parenthetical
// substrings and punctuation, collapsing whitespace.
func NormalizeTitle(title string) string {
	t := strings.ToLower(parenRe.ReplaceAllString(title, " "))
	t = punctRe.ReplaceAllString(t, " ")
	return strings.Join(strings.Fields(t), " ")
}

// TitleKeywords returns the set of word tokens from a title, with
// parentheticals stripped first.
func TitleKeywords(title string) map[string]bool {
	t := strings.ToLower(parenRe.ReplaceAllString(title, " "))
	keywords := make(map[string]bool)
	for _, w := range wordRe.FindAllString(t, -1) {
		keywords[w] = true
	}
	return keywords
}

// QueryKeywords returns the lowercase whitespace-split tokens of a query.
func QueryKeywords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
