//go:build !cgo
// +build !cgo

package ranking

import (
	"context"
	"errors"
)

// ONNXCrossEncoder stub type when built without CGO (see onnx.go for real implementation).
type ONNXCrossEncoder struct{}

// NewONNXCrossEncoder returns an error when built without CGO (ONNX not available).
func NewONNXCrossEncoder(_ string, _ int) (*ONNXCrossEncoder, error) {
	return nil, errors.New("ONNX cross-encoder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// Score is unreachable on the stub.
func (e *ONNXCrossEncoder) Score(_ context.Context, _ string, _ []string) ([]float64, error) {
	return nil, errors.New("ONNX cross-encoder not available")
}

// Close is a no-op on the stub.
func (e *ONNXCrossEncoder) Close() error { return nil }
