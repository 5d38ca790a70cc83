package ranking

import "context"

// MockCrossEncoder is a controllable cross-encoder for tests. Documents not
// present in Scores receive Default.
type MockCrossEncoder struct {
	Scores  map[string]float64
	Default float64
}

// Score returns the configured score per document.
func (m *MockCrossEncoder) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	scores := make([]float64, len(documents))
	for i, doc := range documents {
		if s, ok := m.Scores[doc]; ok {
			scores[i] = s
		} else {
			scores[i] = m.Default
		}
	}
	return scores, nil
}

// Close is a no-op for MockCrossEncoder.
func (m *MockCrossEncoder) Close() error { return nil }
