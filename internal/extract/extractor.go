// Package extract splits crawled page markup into titled sections.
package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperjump/kotae/internal/models"
)

// Extract parses page markup and returns its titled sections in document
// order. Text before the first heading becomes an "Introduction" section.
// Each heading (h1-h6) starts a section that collects following siblings
// until the next section break. Sections that collect no text are dropped.
func Extract(markup string, sourceURL string) ([]models.Section, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	main := findMainContent(doc)

	var sections []models.Section
	if intro := collectIntro(main); intro != "" {
		sections = append(sections, models.Section{
			Title:     "Introduction",
			Text:      intro,
			SourceURL: sourceURL,
		})
	}

	for _, heading := range findHeadings(main) {
		text := collectSection(heading)
		if text == "" {
			continue
		}
		sections = append(sections, models.Section{
			Title:     elementText(heading),
			Text:      text,
			SourceURL: sourceURL,
		})
	}

	return sections, nil
}

// findMainContent returns the first <main> or <article> element, falling
// back to <body> (which the parser always synthesizes) when neither exists.
func findMainContent(doc *html.Node) *html.Node {
	if main := findElement(doc, "main"); main != nil {
		return main
	}
	if article := findElement(doc, "article"); article != nil {
		return article
	}
	if body := findElement(doc, "body"); body != nil {
		return body
	}
	return doc
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// isSectionBreak reports whether a tag terminates a section. Deliberately
// looser than isHeading: any two-character h-tag breaks, so content under a
// deep heading still ends the preceding section's collection.
func isSectionBreak(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h'
}

func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// findHeadings returns all heading elements under n in document order.
func findHeadings(n *html.Node) []*html.Node {
	var headings []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && isHeading(node.Data) {
			headings = append(headings, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return headings
}

// collectIntro gathers paragraph and div text from direct children of main
// that appear before the first section break.
func collectIntro(main *html.Node) string {
	var parts []string
	for c := main.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if isSectionBreak(c.Data) {
			break
		}
		if c.Data == "p" || c.Data == "div" {
			if text := elementText(c); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// collectSection gathers text from the siblings following a heading until
// the next section break. Paragraphs and divs contribute their visible text;
// list items contribute one bullet line each.
func collectSection(heading *html.Node) string {
	var parts []string
	for sib := heading.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		if isSectionBreak(sib.Data) {
			break
		}
		switch sib.Data {
		case "p", "div":
			if text := elementText(sib); text != "" {
				parts = append(parts, text)
			}
		case "li":
			if text := elementText(sib); text != "" {
				parts = append(parts, "- "+text)
			}
		case "ul", "ol":
			for _, li := range findElements(sib, "li") {
				if text := elementText(li); text != "" {
					parts = append(parts, "- "+text)
				}
			}
		}
	}
	return strings.Join(parts, "\n")
}

func findElements(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			found = append(found, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

// elementText returns the whitespace-normalized visible text of a node.
func elementText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
