package crawler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/models"
)

// Indexer receives batches of extracted sections. Implemented by
// pipeline.Pipeline.
type Indexer interface {
	Index(ctx context.Context, sections []models.Section) (int, error)
}

// Crawler walks a site breadth-first and feeds extracted sections to an
// indexing pipeline. Crawling is single-threaded: the frontier is processed
// one URL at a time.
type Crawler struct {
	fetcher   Fetcher
	indexer   Indexer
	allow     AllowFunc
	maxDepth  int
	batchSize int
	delay     time.Duration
	logger    *zap.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets a logger for per-URL progress and failure output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

// WithDelay sets the politeness delay inserted after each successful fetch.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) { c.delay = d }
}

// New creates a crawler. allow may be nil to accept every URL; batchSize
// controls how many visited URLs accumulate before sections are flushed to
// the indexer.
func New(fetcher Fetcher, indexer Indexer, allow AllowFunc, maxDepth, batchSize int, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:   fetcher,
		indexer:   indexer,
		allow:     allow,
		maxDepth:  maxDepth,
		batchSize: batchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type frontierItem struct {
	url   string
	depth int
}

// Crawl performs a breadth-first traversal from seedURL. URLs are normalized
// before both enqueue and visited checks, so no two equivalent URLs are
// fetched twice. Pages at maxDepth are fetched but their links are not
// followed. Per-page failures are logged and skipped; the crawl continues.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) error {
	visited := make(map[string]bool)
	queue := []frontierItem{{url: NormalizeURL(seedURL), depth: 0}}
	var batch []models.Section
	visitedCount := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := queue[0]
		queue = queue[1:]

		if visited[item.url] || item.depth > c.maxDepth {
			continue
		}
		// The predicate is re-checked on dequeue, not only at discovery,
		// so a predicate change mid-run is respected.
		if c.allow != nil && !c.allow(item.url) {
			continue
		}
		visited[item.url] = true
		visitedCount++

		c.logger.Info("crawling", zap.String("url", item.url), zap.Int("depth", item.depth))

		body, err := c.fetcher.Fetch(ctx, item.url)
		if err != nil {
			c.logger.Warn("page fetch failed", zap.String("url", item.url), zap.Error(err))
		} else {
			sections, err := extract.Extract(body, item.url)
			if err != nil {
				c.logger.Warn("page parse failed", zap.String("url", item.url), zap.Error(err))
			} else {
				batch = append(batch, sections...)
			}

			if item.depth < c.maxDepth {
				for _, link := range ExtractLinks(body, item.url, c.allow) {
					if !visited[link] {
						queue = append(queue, frontierItem{url: link, depth: item.depth + 1})
					}
				}
			}

			if c.delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.delay):
				}
			}
		}

		if c.batchSize > 0 && visitedCount%c.batchSize == 0 {
			if err := c.flush(ctx, &batch, visitedCount); err != nil {
				return err
			}
		}
	}

	return c.flush(ctx, &batch, visitedCount)
}

func (c *Crawler) flush(ctx context.Context, batch *[]models.Section, visitedCount int) error {
	if len(*batch) == 0 {
		return nil
	}
	c.logger.Info("flushing sections to pipeline",
		zap.Int("sections", len(*batch)), zap.Int("urls_visited", visitedCount))
	if _, err := c.indexer.Index(ctx, *batch); err != nil {
		return err
	}
	*batch = nil
	return nil
}
