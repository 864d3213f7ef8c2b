// Package embedder provides the in-process embedding model: a loadable
// local model plus a concurrency-guarded process-wide handle around it.
package embedder

import (
	"context"
	"errors"
	"fmt"
)

// Embedder generates vector embeddings from text. Implementations must
// return one vector per input, in input order, all of Dimensions length,
// and must be deterministic: the same text always yields the same vector.
type Embedder interface {
	// Embed generates embeddings for an ordered batch of texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector dimension.
	Dimensions() int

	// ModelID returns the identifier of the loaded model.
	ModelID() string

	// MaxTokens returns the model's advertised input token window.
	MaxTokens() int
}

// ErrNotReady is returned when Embed is called before the model has
// finished loading.
var ErrNotReady = errors.New("embedding model not ready")

// ErrTimeout is returned when a call exceeds its wall-clock budget. The
// in-flight computation runs to completion and its result is discarded;
// the handle remains usable.
var ErrTimeout = errors.New("embedding timed out")

// InferenceError wraps a failure inside the model itself. Callers map it
// to a server error; the model handle stays valid for later requests.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
