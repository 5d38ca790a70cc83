package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chat"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/feedback"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/pipeline"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/store"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Close() error { return nil }

var _ llm.Client = (*fakeLLM)(nil)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	embedder := embedding.NewMockEmbedder(16)
	st := store.NewMemory()
	p := pipeline.New(embedder, st, "test")
	_, err := p.Index(context.Background(), []models.Section{
		{Title: "Vacation Policy", Text: "You get 25 days per year.", SourceURL: "https://handbook.example.com/vacation"},
		{Title: "Remote Work", Text: "Remote work is allowed on Fridays.", SourceURL: "https://handbook.example.com/remote"},
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	svc := chat.NewService(
		embedder,
		st,
		ranking.New(&ranking.MockCrossEncoder{Default: 1.0}),
		&fakeLLM{response: "You get 25 days per year."},
		chat.Options{NResults: 15, TopK: 3, MaxQueryLength: 500, SuppressUnknownSources: true},
		zap.NewNop(),
	)

	fb, err := feedback.Open(filepath.Join(t.TempDir(), "feedback.db"))
	if err != nil {
		t.Fatalf("feedback.Open() error = %v", err)
	}
	t.Cleanup(func() { fb.Close() })

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Chat.Suggestions = []string{
		"How many vacation days do I get?",
		"Can I work remotely?",
		"What is the release process?",
		"Who do I ask about benefits?",
	}

	return NewServer(svc, fb, st, cfg, zap.NewNop())
}

func TestHandleChat(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(chatRequest{Question: "How many vacation days do I get?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.handleChat(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp models.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer == "" {
		t.Error("expected non-empty answer")
	}
	if len(resp.Sources) == 0 {
		t.Error("expected at least one source")
	}
}

func TestHandleChatEmptyQuestion(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(chatRequest{Question: "   "})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.handleChat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleChatInvalidBody(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	srv.handleChat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleFeedback(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(models.FeedbackInput{
		Question: "How many vacation days do I get?",
		Answer:   "25 days.",
		Rating:   "up",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.handleFeedback(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["id"] == "" {
		t.Error("expected feedback id in response")
	}

	count, err := srv.feedback.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("feedback count = %d, want 1", count)
	}
}

func TestHandleFeedbackInvalidRating(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(models.FeedbackInput{Question: "q", Answer: "a", Rating: "maybe"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.handleFeedback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleSuggestions(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/suggestions", nil)
	w := httptest.NewRecorder()

	srv.handleSuggestions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	got := resp["suggestions"]
	if len(got) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got))
	}
	pool := make(map[string]bool)
	for _, s := range srv.suggestions {
		pool[s] = true
	}
	seen := make(map[string]bool)
	for _, s := range got {
		if !pool[s] {
			t.Errorf("suggestion %q not in configured pool", s)
		}
		if seen[s] {
			t.Errorf("suggestion %q returned twice", s)
		}
		seen[s] = true
	}
}

func TestHandleSuggestionsSmallPool(t *testing.T) {
	srv := newTestServer(t)
	srv.suggestions = []string{"only one"}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/suggestions", nil)
	w := httptest.NewRecorder()

	srv.handleSuggestions(w, req)

	var resp map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp["suggestions"]) != 1 {
		t.Errorf("got %d suggestions, want 1", len(resp["suggestions"]))
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()

	srv.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if chunks, ok := resp["chunks"].(float64); !ok || chunks != 2 {
		t.Errorf("chunks = %v, want 2", resp["chunks"])
	}
	if _, ok := resp["config"]; !ok {
		t.Error("expected config section in status")
	}
}

func TestRouterWiring(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", res.StatusCode, http.StatusOK)
	}
}
