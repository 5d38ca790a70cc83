// Package chat implements the serving path: embed the question, retrieve
// candidates, rerank them, and generate a grounded answer.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/store"
	"github.com/hyperjump/kotae/pkg/utils"
)

const promptTemplate = `You are an assistant answering questions about a company handbook.
Answer using only the context below. Do not repeat the context verbatim.
If the context does not contain the answer, say "I don't know".

Context:
%s

Question: %s`

// Canned user-facing messages. Pipeline failures degrade to one of these;
// a raw error never reaches the user.
const (
	msgNoResults   = "No relevant information found in the handbook."
	msgNotFound    = "I could not find an answer to that in the handbook."
	msgServerError = "Server error (5xx). Please try again later."
	msgGenericErr  = "Error generating response."
)

const unknownDisclaimer = "i don't know"

// Options holds the serving-path tuning knobs.
type Options struct {
	NResults               int
	TopK                   int
	MaxQueryLength         int
	SuppressUnknownSources bool
}

// Service answers questions over the indexed corpus. It holds no mutable
// state across requests; concurrent calls are safe as long as the store and
// model clients support concurrent reads.
type Service struct {
	embedder embedding.Embedder
	store    store.VectorStore
	reranker *ranking.Reranker
	client   llm.Client
	opts     Options
	logger   *zap.Logger
}

// NewService creates a chat service with the given dependencies.
func NewService(
	embedder embedding.Embedder,
	vs store.VectorStore,
	reranker *ranking.Reranker,
	client llm.Client,
	opts Options,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		embedder: embedder,
		store:    vs,
		reranker: reranker,
		client:   client,
		opts:     opts,
		logger:   logger,
	}
}

// Answer runs the full serving path for one question. Invalid questions
// return an error; everything past validation degrades to a canned response
// instead of failing.
func (s *Service) Answer(ctx context.Context, question string) (*models.ChatResponse, error) {
	query := models.ChatQuery{Question: question, MaxLength: s.opts.MaxQueryLength}
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	emb, err := s.embedder.Embed(ctx, query.Question)
	if err != nil {
		s.logger.Error("query embedding failed", zap.Error(err))
		return &models.ChatResponse{Answer: msgGenericErr, Sources: []string{}}, nil
	}

	candidates, err := s.store.Query(ctx, emb, s.opts.NResults)
	if err != nil {
		s.logger.Error("retrieval failed", zap.Error(err))
		return &models.ChatResponse{Answer: msgGenericErr, Sources: []string{}}, nil
	}

	top, err := s.reranker.Rerank(ctx, query.Question, candidates, s.opts.TopK)
	if err != nil {
		s.logger.Error("reranking failed", zap.Error(err))
		return &models.ChatResponse{Answer: msgGenericErr, Sources: []string{}}, nil
	}
	if len(top) == 0 {
		return &models.ChatResponse{Answer: msgNoResults, Sources: []string{}}, nil
	}

	return s.generate(ctx, query.Question, top), nil
}

// generate builds the prompt from the reranked context and calls the model.
func (s *Service) generate(ctx context.Context, question string, top []models.Candidate) *models.ChatResponse {
	contexts := make([]string, len(top))
	for i, c := range top {
		contexts[i] = c.Document
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n\n"), question)

	text, err := s.client.Generate(ctx, prompt)
	if err != nil {
		kind := llm.KindOf(err)
		s.logger.Error("generation failed", zap.String("kind", string(kind)), zap.Error(err))
		if kind == llm.KindTransient {
			return &models.ChatResponse{Answer: msgServerError, Sources: []string{}}
		}
		return &models.ChatResponse{Answer: msgGenericErr, Sources: []string{}}
	}

	answer := strings.TrimSpace(text)
	s.logger.Debug("answer generated", zap.String("answer", utils.Truncate(answer, 120)))
	if strings.Contains(strings.ToLower(answer), unknownDisclaimer) && s.opts.SuppressUnknownSources {
		return &models.ChatResponse{Answer: msgNotFound, Sources: []string{}}
	}
	return &models.ChatResponse{Answer: answer, Sources: sourceURLs(top)}
}

// sourceURLs deduplicates context URLs in first-seen order, which keeps
// citation numbering stable across identical requests.
func sourceURLs(top []models.Candidate) []string {
	seen := make(map[string]bool)
	sources := []string{}
	for _, c := range top {
		url := c.Metadata.URL
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		sources = append(sources, url)
	}
	return sources
}
