// Package embed implements the Embedder contract: a black-box mapping from
// text to a unit-norm vector, loaded lazily and at most once per process.
package embed

import (
	"context"
	"math"
	"time"
)

const (
	// MinBatchSize is the minimum allowed batch size.
	MinBatchSize = 1

	// MaxBatchSize is the hard ceiling on a single EmbedBatch call,
	// matching spec.md §5's resource limit.
	MaxBatchSize = 32

	// DefaultBatchSize is the batch size the Synchronizer uses by default.
	DefaultBatchSize = 32

	// MaxTextChars is the truncation length applied to any text handed to
	// Embed/EmbedBatch, per spec.md §4.C4. This is a deliberate lossy step;
	// the Chunker is expected to keep chunks well under this cap.
	MaxTextChars = 2000

	// DefaultMaxRetries is the bounded retry count for model load.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the fixed delay between model-load retries.
	DefaultRetryDelay = 2 * time.Second

	// DefaultRequestTimeout bounds a single embed/embedBatch HTTP call.
	DefaultRequestTimeout = 60 * time.Second
)

// Default dimensions for the two shipped backends.
const (
	// OllamaDefaultDimension is used when dimension auto-detection fails
	// and no explicit override is configured (matches embeddinggemma-class
	// models, the teacher's own default).
	OllamaDefaultDimension = 768

	// StaticDimension is the fixed dimension of the deterministic fallback
	// embedder used in tests and when no networked backend is configured.
	StaticDimension = 256
)

// Embedder is the narrow contract spec.md §4.C4 requires: embed(text),
// embedBatch(texts), modelId(), dimension(). Swapping the backend (native
// inference, an out-of-process service, or a pure-function test mock)
// never requires touching the Chunker, Store, Synchronizer, or Searcher.
type Embedder interface {
	// Embed returns a unit-norm vector for text. Text longer than
	// MaxTextChars is truncated before embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds multiple texts; result order matches input order.
	// len(texts) must not exceed MaxBatchSize.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelID returns an opaque model identifier, compared by equality.
	// Persisted by the Store so that a model swap forces a full reindex.
	ModelID() string

	// Dimension returns the vector length Embed/EmbedBatch produce.
	Dimension() int

	// Available reports whether the backend is reachable. For Ollama this
	// triggers the lazy model load if it has not happened yet.
	Available(ctx context.Context) bool

	// Close releases any held resources (HTTP connections, caches).
	Close() error
}

// normalizeVector rescales v to unit L2 norm. A zero vector is returned
// unchanged — embedding the empty string is the only realistic producer of
// one, and callers are expected to have already skipped empty chunks.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}

// truncate applies the spec's 2000-char input cap.
func truncate(text string) string {
	if len(text) <= MaxTextChars {
		return text
	}
	return text[:MaxTextChars]
}
