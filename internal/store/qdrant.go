package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/hyperjump/kotae/internal/models"
)

const scrollPageSize = 1024

// Qdrant implements VectorStore using a qdrant collection with cosine
// distance. Qdrant point IDs must be UUIDs or integers, so the string chunk
// ID is stored in the payload and the point ID is the deterministic UUIDv5
// digest of it, which keeps upserts for the same chunk ID idempotent.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	vectorSize uint64
}

// NewQdrant connects to qdrant and ensures the collection exists.
func NewQdrant(ctx context.Context, host string, port int, collection string, vectorSize uint64) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	s := &Qdrant{
		client:     client,
		collection: collection,
		vectorSize: vectorSize,
	}
	if err := s.initCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Qdrant) initCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     s.vectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}
	return nil
}

// pointID returns the deterministic qdrant point ID for a chunk ID.
func pointID(chunkID string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String())
}

// Upsert writes chunks to the collection and waits for them to be indexed.
func (s *Qdrant) Upsert(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		payload := map[string]*qdrant.Value{
			"chunk_id":      qdrant.NewValueString(c.ID),
			"document":      qdrant.NewValueString(c.Document),
			"section_title": qdrant.NewValueString(c.Metadata.SectionTitle),
			"url":           qdrant.NewValueString(c.Metadata.URL),
			"source_prefix": qdrant.NewValueString(c.Metadata.SourcePrefix),
		}
		points[i] = &qdrant.PointStruct{
			Id:      pointID(c.ID),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: payload,
		}
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// Query performs nearest-neighbor search and returns candidates with the
// store's similarity score.
func (s *Qdrant) Query(ctx context.Context, embedding []float32, nResults int) ([]models.Candidate, error) {
	limit := uint64(nResults)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	candidates := make([]models.Candidate, len(hits))
	for i, hit := range hits {
		candidates[i] = models.Candidate{
			Document: payloadString(hit.Payload, "document"),
			Metadata: models.ChunkMetadata{
				SectionTitle: payloadString(hit.Payload, "section_title"),
				URL:          payloadString(hit.Payload, "url"),
				SourcePrefix: payloadString(hit.Payload, "source_prefix"),
			},
			Score: float64(hit.Score),
		}
	}
	return candidates, nil
}

// AllIDs scrolls the whole collection and returns every chunk ID.
func (s *Qdrant) AllIDs(ctx context.Context) ([]string, error) {
	var ids []string
	limit := uint32(scrollPageSize)
	var offset *qdrant.PointId
	var lastUUID string

	for {
		points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant scroll failed: %w", err)
		}
		if len(points) == 0 {
			break
		}
		for _, p := range points {
			// The offset point is included again on subsequent pages.
			if p.Id.GetUuid() == lastUUID && lastUUID != "" {
				continue
			}
			if id := payloadString(p.Payload, "chunk_id"); id != "" {
				ids = append(ids, id)
			}
		}
		if len(points) < scrollPageSize {
			break
		}
		last := points[len(points)-1]
		lastUUID = last.Id.GetUuid()
		offset = last.Id
	}
	return ids, nil
}

// Count returns the exact number of points in the collection.
func (s *Qdrant) Count(ctx context.Context) (uint64, error) {
	exact := true
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return count, nil
}

// Close closes the underlying gRPC connection.
func (s *Qdrant) Close() error {
	return s.client.Close()
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
