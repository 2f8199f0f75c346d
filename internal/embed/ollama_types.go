package embed

import "time"

// Ollama API defaults.
const (
	// DefaultOllamaHost is the default Ollama API endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the preferred embedding model: a small
	// multilingual model capable of the cross-language retrieval scenario
	// in spec.md §8.
	DefaultOllamaModel = "embeddinggemma"

	// OllamaPoolSize is the HTTP connection pool size.
	OllamaPoolSize = 4
)

// FallbackOllamaModels are tried in order if the primary model is not
// installed locally.
var FallbackOllamaModels = []string{
	"nomic-embed-text",
	"mxbai-embed-large",
}

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	// Host is the Ollama API endpoint.
	Host string

	// Model is the preferred embedding model.
	Model string

	// FallbackModels are tried in order if Model is not installed.
	FallbackModels []string

	// Dimensions overrides auto-detection; 0 means auto-detect from the
	// first embedding call.
	Dimensions int

	// BatchSize bounds a single /api/embed call.
	BatchSize int

	// RequestTimeout bounds a single HTTP call (after the connection is
	// established and the model is warm).
	RequestTimeout time.Duration

	// MaxRetries is the bounded retry count for transient failures.
	MaxRetries int

	// RetryDelay is the fixed delay between retries (spec.md §4.C4: 2s).
	RetryDelay time.Duration

	// PoolSize is the HTTP connection pool size.
	PoolSize int

	// SkipHealthCheck skips the initial Ollama availability probe; used in
	// tests that construct an OllamaEmbedder against a mock server.
	SkipHealthCheck bool
}

// DefaultOllamaConfig returns sensible defaults.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		Host:           DefaultOllamaHost,
		Model:          DefaultOllamaModel,
		FallbackModels: FallbackOllamaModels,
		Dimensions:     0,
		BatchSize:      DefaultBatchSize,
		RequestTimeout: DefaultRequestTimeout,
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
		PoolSize:       OllamaPoolSize,
	}
}

// OllamaEmbedRequest is the Ollama /api/embed request body.
type OllamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"` // string or []string for batch
}

// OllamaEmbedResponse is the Ollama /api/embed response body.
type OllamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// OllamaModelListResponse is the Ollama /api/tags response body.
type OllamaModelListResponse struct {
	Models []OllamaModelInfo `json:"models"`
}

// OllamaModelInfo describes one locally installed Ollama model.
type OllamaModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}
