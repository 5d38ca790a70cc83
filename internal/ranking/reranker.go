package ranking

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

const (
	// paraphraseBoost applies when the title is substantially a paraphrase
	// of the query (keyword overlap ratio above paraphraseThreshold).
	paraphraseBoost     = 2.0
	paraphraseThreshold = 0.6
	// substringBoost applies when any query keyword appears in the
	// normalized title.
	substringBoost = 0.75
)

// Reranker rescores retrieval candidates with a cross-encoder and title
// heuristics, returning the top-K by final score.
type Reranker struct {
	encoder CrossEncoder
	logger  *zap.Logger
}

// Option configures a Reranker.
type Option func(*Reranker)

// WithLogger sets a logger for per-query score output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reranker) { r.logger = l }
}

// New creates a reranker over the given cross-encoder.
func New(encoder CrossEncoder, opts ...Option) *Reranker {
	r := &Reranker{encoder: encoder, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rerank scores every candidate against query, applies title boosts, and
// returns at most topK candidates in descending score order. Ties keep the
// original retrieval order. Empty input returns an empty result.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []models.Candidate, topK int) ([]models.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Document
	}
	scores, err := r.encoder.Score(ctx, query, documents)
	if err != nil {
		return nil, err
	}

	keywords := QueryKeywords(query)
	reranked := make([]models.Candidate, len(candidates))
	for i, c := range candidates {
		score := scores[i] + titleBoost(c.Metadata.SectionTitle, keywords)
		reranked[i] = models.Candidate{
			Document: c.Document,
			Metadata: c.Metadata,
			Score:    score,
		}
	}

	// Stable sort so that equal scores preserve retrieval order.
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})
	if topK > 0 && topK < len(reranked) {
		reranked = reranked[:topK]
	}

	r.logger.Debug("reranked candidates",
		zap.String("query", query),
		zap.Int("in", len(candidates)),
		zap.Int("out", len(reranked)))
	return reranked, nil
}

// titleBoost returns the heuristic boost for a candidate's section title
// given the query keywords.
func titleBoost(title string, keywords []string) float64 {
	titleKw := TitleKeywords(title)
	if len(titleKw) > 0 {
		// Set intersection: a repeated query token counts once.
		overlap := 0
		seen := make(map[string]bool)
		for _, k := range keywords {
			if titleKw[k] && !seen[k] {
				seen[k] = true
				overlap++
			}
		}
		if float64(overlap)/float64(len(titleKw)) > paraphraseThreshold {
			return paraphraseBoost
		}
	}
	normTitle := NormalizeTitle(title)
	for _, k := range keywords {
		if normTitle != "" && strings.Contains(normTitle, k) {
			return substringBoost
		}
	}
	return 0
}
