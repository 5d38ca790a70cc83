package models

import (
	"fmt"
	"strings"
)

// DefaultMaxQueryLength caps accepted question length when config leaves it unset.
const DefaultMaxQueryLength = 500

// ChatQuery represents one question from a user. Conversation history is
// never inspected; only the latest question reaches the pipeline.
type ChatQuery struct {
	Question  string `json:"question"`
	MaxLength int    `json:"-"`
}

// Validate rejects empty and over-length questions before they reach the
// pipeline. The question is trimmed in place.
func (q *ChatQuery) Validate() error {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	maxLen := q.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxQueryLength
	}
	if len(q.Question) > maxLen {
		return fmt.Errorf("question exceeds maximum length of %d characters", maxLen)
	}
	return nil
}

// ChatResponse is the answer returned for a ChatQuery.
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// FeedbackInput is the request body for recording feedback.
type FeedbackInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Rating   string `json:"rating"`
}

// Validate ensures the rating is "up" or "down".
func (f *FeedbackInput) Validate() error {
	if f.Rating != "up" && f.Rating != "down" {
		return fmt.Errorf("rating must be \"up\" or \"down\", got %q", f.Rating)
	}
	return nil
}
