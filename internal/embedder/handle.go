package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// HandleConfig bounds how the process-wide model handle serves requests.
type HandleConfig struct {
	// Path of the model artifact; empty selects the bundled artifact
	// for Dimensions.
	Path           string
	Dimensions     int
	MaxConcurrency int
	// Timeout is the wall-clock budget per Embed call. Zero disables it.
	Timeout time.Duration
	Warmup  bool
}

// Handle is the single long-lived handle to the loaded model. It is
// constructed once at startup, opened before the HTTP listener starts,
// and shared read-only by all request handlers afterwards.
type Handle struct {
	cfg      HandleConfig
	model    Embedder
	load     func() (Embedder, error)
	sem      *semaphore.Weighted
	ready    atomic.Bool
	openOnce sync.Once
	openErr  error
}

// NewHandle constructs an unopened handle. Embed returns ErrNotReady
// until Open has completed successfully.
func NewHandle(cfg HandleConfig) *Handle {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	return &Handle{
		cfg: cfg,
		load: func() (Embedder, error) {
			return LoadHashModel(cfg.Path, cfg.Dimensions)
		},
		sem: semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
	}
}

// Open loads the model artifact and runs a warmup inference, exactly
// once. Loading is the only operation allowed to be slow; a failure here
// is fatal to the caller and the handle never becomes ready.
func (h *Handle) Open(ctx context.Context) error {
	h.openOnce.Do(func() {
		start := time.Now()
		model, err := h.load()
		if err != nil {
			h.openErr = err
			return
		}
		if h.cfg.Warmup {
			if _, err := model.Embed(ctx, []string{"warmup"}); err != nil {
				h.openErr = fmt.Errorf("warmup inference: %w", err)
				return
			}
		}
		h.model = model
		h.ready.Store(true)
		slog.Info("embedding model loaded",
			"model", model.ModelID(),
			"dimensions", model.Dimensions(),
			"max_tokens", model.MaxTokens(),
			"elapsed", time.Since(start))
	})
	return h.openErr
}

// Ready reports whether the model has finished loading.
func (h *Handle) Ready() bool { return h.ready.Load() }

// ModelID is valid once the handle is ready.
func (h *Handle) ModelID() string {
	if h.model == nil {
		return ""
	}
	return h.model.ModelID()
}

// Dimensions is valid once the handle is ready.
func (h *Handle) Dimensions() int {
	if h.model == nil {
		return 0
	}
	return h.model.Dimensions()
}

// MaxTokens is valid once the handle is ready.
func (h *Handle) MaxTokens() int {
	if h.model == nil {
		return 0
	}
	return h.model.MaxTokens()
}

// Embed runs the loaded model over texts. Concurrent callers are bounded
// by the configured semaphore; callers past the bound queue in Acquire
// until capacity frees or their context ends. Inference is not
// interrupted once started: on timeout the computation finishes in the
// background and its result is discarded, leaving the handle usable.
func (h *Handle) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !h.ready.Load() {
		return nil, ErrNotReady
	}

	if h.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Timeout)
		defer cancel()
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, mapContextErr(err)
	}

	type embedResult struct {
		vectors [][]float32
		err     error
	}
	resultCh := make(chan embedResult, 1)

	go func() {
		defer h.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				resultCh <- embedResult{err: &InferenceError{Err: fmt.Errorf("model panic: %v", r)}}
			}
		}()

		vectors, err := h.model.Embed(context.WithoutCancel(ctx), texts)
		if err != nil {
			var infErr *InferenceError
			if !errors.As(err, &infErr) {
				err = &InferenceError{Err: err}
			}
			resultCh <- embedResult{err: err}
			return
		}
		resultCh <- embedResult{vectors: vectors}
	}()

	select {
	case <-ctx.Done():
		return nil, mapContextErr(ctx.Err())
	case res := <-resultCh:
		return res.vectors, res.err
	}
}

func mapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
