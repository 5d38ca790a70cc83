// Package models defines core data structures for sections, chunks, and chat requests.
package models

import "time"

// Section is a titled span of page text produced by the extractor.
// One section per heading, plus an optional "Introduction" section for
// text that appears before the first heading.
type Section struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

// Chunk is the persisted unit of retrieval: one embedded document plus metadata.
// IDs are namespaced by a per-crawl prefix ("gitlab_42") so independent corpora
// can share a collection without colliding.
type Chunk struct {
	ID        string        `json:"id"`
	Embedding []float32     `json:"-"`
	Document  string        `json:"document"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// ChunkMetadata is carried with every chunk for display and filtering.
type ChunkMetadata struct {
	SectionTitle string `json:"section_title"`
	URL          string `json:"url"`
	SourcePrefix string `json:"source_prefix"`
}

// Candidate is a retrieval hit under reranking. Score starts as the
// store's similarity score and is replaced by the reranker's final score.
type Candidate struct {
	Document string        `json:"document"`
	Metadata ChunkMetadata `json:"metadata"`
	Score    float64       `json:"score"`
}

// Feedback is one thumbs up/down record for a question/answer pair.
type Feedback struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Rating    string    `json:"rating"` // "up" or "down"
	CreatedAt time.Time `json:"created_at"`
}
