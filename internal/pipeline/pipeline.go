// Package pipeline embeds extracted sections and writes them to the vector store.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/store"
)

// Pipeline batches sections, embeds them, and upserts chunks under a
// per-crawl ID prefix. The next chunk ID is read from the store once and
// incremented in memory thereafter, so exactly one pipeline may write under
// a given prefix at a time.
type Pipeline struct {
	embedder embedding.Embedder
	store    store.VectorStore
	idPrefix string
	logger   *zap.Logger
	nextID   int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a logger for batch progress output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a pipeline writing under idPrefix.
func New(embedder embedding.Embedder, vs store.VectorStore, idPrefix string, opts ...Option) *Pipeline {
	p := &Pipeline{
		embedder: embedder,
		store:    vs,
		idPrefix: idPrefix,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildDocument returns the text that is embedded and stored for a section.
// The title is prepended so that title-keyword queries recall the section.
func BuildDocument(s models.Section) string {
	return fmt.Sprintf("Section title: %s\n%s", s.Title, s.Text)
}

// NextChunkID scans existing IDs under prefix and returns one past the
// largest numeric suffix found, starting at 1 for an empty prefix. IDs whose
// suffix is not numeric are ignored.
func NextChunkID(ctx context.Context, vs store.VectorStore, prefix string) (int, error) {
	ids, err := vs.AllIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list chunk IDs: %w", err)
	}
	maxID := 0
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(id[len(prefix):])
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return maxID + 1, nil
}

// Index embeds the sections in one batch and upserts them. It returns the
// next available chunk ID after the batch.
func (p *Pipeline) Index(ctx context.Context, sections []models.Section) (int, error) {
	if p.nextID == 0 {
		next, err := NextChunkID(ctx, p.store, p.idPrefix)
		if err != nil {
			return 0, err
		}
		p.nextID = next
	}
	if len(sections) == 0 {
		return p.nextID, nil
	}

	documents := make([]string, len(sections))
	for i, s := range sections {
		documents[i] = BuildDocument(s)
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, documents)
	if err != nil {
		return 0, fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(embeddings) != len(documents) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d documents", len(embeddings), len(documents))
	}

	chunks := make([]models.Chunk, len(sections))
	for i, s := range sections {
		chunks[i] = models.Chunk{
			ID:        fmt.Sprintf("%s%d", p.idPrefix, p.nextID+i),
			Embedding: embeddings[i],
			Document:  documents[i],
			Metadata: models.ChunkMetadata{
				SectionTitle: s.Title,
				URL:          s.SourceURL,
				SourcePrefix: p.idPrefix,
			},
		}
	}

	if err := p.store.Upsert(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to upsert chunks: %w", err)
	}
	p.nextID += len(chunks)

	p.logger.Info("indexed batch",
		zap.Int("chunks", len(chunks)),
		zap.String("prefix", p.idPrefix),
		zap.Int("next_id", p.nextID))
	return p.nextID, nil
}
