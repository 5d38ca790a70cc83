package ranking

import (
	"context"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func candidate(doc, title string) models.Candidate {
	return models.Candidate{
		Document: doc,
		Metadata: models.ChunkMetadata{SectionTitle: title, URL: "https://example.com/" + doc},
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Our Core Values", "our core values"},
		{"Benefits (US only)", "benefits"},
		{"On-boarding!", "on boarding"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleKeywords(t *testing.T) {
	kw := TitleKeywords("Core Values (draft)")
	if !kw["core"] || !kw["values"] {
		t.Errorf("missing expected keywords: %v", kw)
	}
	if kw["draft"] {
		t.Error("parenthetical content should be stripped")
	}
}

func TestQueryKeywords(t *testing.T) {
	kw := QueryKeywords("Core  Values")
	if len(kw) != 2 || kw[0] != "core" || kw[1] != "values" {
		t.Errorf("unexpected keywords: %v", kw)
	}
}

func TestRerank_ParaphraseBoostWins(t *testing.T) {
	// Equal base scores; the title-paraphrase candidate must rank first.
	encoder := &MockCrossEncoder{Default: 1.0}
	r := New(encoder)

	candidates := []models.Candidate{
		candidate("doc-unrelated", "Release Process"),
		candidate("doc-values", "Our Core Values"),
	}
	out, err := r.Rerank(context.Background(), "core values", candidates, 2)
	if err != nil {
		t.Fatalf("Rerank() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].Metadata.SectionTitle != "Our Core Values" {
		t.Errorf("expected boosted candidate first, got %q", out[0].Metadata.SectionTitle)
	}
	if out[0].Score <= out[1].Score {
		t.Error("boosted score should exceed unboosted score")
	}
}

func TestRerank_SubstringBoost(t *testing.T) {
	encoder := &MockCrossEncoder{Default: 1.0}
	r := New(encoder)

	// "values" appears in the normalized title but overlap ratio is low
	// (1 of 5 title keywords), so only the smaller boost applies.
	candidates := []models.Candidate{
		candidate("doc-a", "The Long History Of Values"),
		candidate("doc-b", "Release Process"),
	}
	out, err := r.Rerank(context.Background(), "values", candidates, 2)
	if err != nil {
		t.Fatalf("Rerank() error: %v", err)
	}
	wantDelta := substringBoost
	if got := out[0].Score - out[1].Score; got < wantDelta-1e-9 || got > wantDelta+1e-9 {
		t.Errorf("score delta = %v, want %v", got, wantDelta)
	}
}

func TestRerank_RepeatedQueryTokensCountOnce(t *testing.T) {
	encoder := &MockCrossEncoder{Default: 1.0}
	r := New(encoder)

	// Overlap is a set intersection: four copies of "vacation" still match
	// only 1 of 5 title keywords, so the paraphrase boost must not fire and
	// the candidate gets the substring boost instead.
	candidates := []models.Candidate{
		candidate("doc-a", "Vacation Sick Parental Bereavement Leave"),
	}
	out, err := r.Rerank(context.Background(), "vacation vacation vacation vacation", candidates, 1)
	if err != nil {
		t.Fatalf("Rerank() error: %v", err)
	}
	want := 1.0 + substringBoost
	if got := out[0].Score; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestRerank_EmptyInput(t *testing.T) {
	r := New(&MockCrossEncoder{})
	out, err := r.Rerank(context.Background(), "anything", nil, 3)
	if err != nil {
		t.Fatalf("Rerank() error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty result, got %d", len(out))
	}
}

func TestRerank_TopKTruncation(t *testing.T) {
	encoder := &MockCrossEncoder{Scores: map[string]float64{
		"a": 3.0, "b": 2.0, "c": 1.0,
	}}
	r := New(encoder)
	candidates := []models.Candidate{
		candidate("c", "C"), candidate("a", "A"), candidate("b", "B"),
	}
	out, err := r.Rerank(context.Background(), "zzz", candidates, 2)
	if err != nil {
		t.Fatalf("Rerank() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].Document != "a" || out[1].Document != "b" {
		t.Errorf("unexpected order: %s, %s", out[0].Document, out[1].Document)
	}
}

func TestRerank_StableTies(t *testing.T) {
	// All scores equal and no boosts: retrieval order must be preserved.
	encoder := &MockCrossEncoder{Default: 1.0}
	r := New(encoder)
	candidates := []models.Candidate{
		candidate("first", "X"), candidate("second", "Y"), candidate("third", "Z"),
	}
	out, err := r.Rerank(context.Background(), "qqq", candidates, 3)
	if err != nil {
		t.Fatalf("Rerank() error: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if out[i].Document != want {
			t.Errorf("position %d = %s, want %s", i, out[i].Document, want)
		}
	}
}

func TestPairTokenize(t *testing.T) {
	inputIDs, attentionMask, tokenTypeIDs := PairTokenize("query words", "doc words here", 16)
	if len(inputIDs) != 16 || len(attentionMask) != 16 || len(tokenTypeIDs) != 16 {
		t.Fatal("expected padded length 16")
	}
	if inputIDs[0] != 101 {
		t.Error("expected [CLS] at position 0")
	}
	// Query segment carries token type 0, document segment 1.
	if tokenTypeIDs[1] != 0 {
		t.Error("query token should have type 0")
	}
	sawDocSegment := false
	for i := range tokenTypeIDs {
		if tokenTypeIDs[i] == 1 && attentionMask[i] == 1 {
			sawDocSegment = true
		}
	}
	if !sawDocSegment {
		t.Error("expected document segment tokens with type 1")
	}
}
