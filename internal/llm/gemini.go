package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// Gemini generates text through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client for the given model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate submits the prompt and returns the model's text. Failures are
// returned as *Error with a classification kind.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify(err)
	}
	return resp.Text(), nil
}

// Close is a no-op; the genai client holds no connection to release.
func (g *Gemini) Close() error {
	return nil
}

// classify maps an API error to a structured Error by status code, so that
// callers never depend on message formatting.
func classify(err error) *Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := KindPermanent
		if apiErr.Code >= http.StatusInternalServerError {
			kind = KindTransient
		}
		return &Error{Kind: kind, Code: apiErr.Code, Err: err}
	}
	return &Error{Kind: KindConnectivity, Err: err}
}
