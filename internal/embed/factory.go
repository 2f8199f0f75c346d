package embed

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ProviderType identifies an embedding backend.
type ProviderType string

const (
	// ProviderOllama uses the Ollama HTTP API (default).
	ProviderOllama ProviderType = "ollama"

	// ProviderStatic uses the deterministic hash-based embedder. It is used
	// only when selected as the provider; NewEmbedder never switches to it
	// when Ollama is unreachable.
	ProviderStatic ProviderType = "static"
)

// NewEmbedder builds an Embedder for provider/model, wrapped in a
// query-embedding LRU cache unless MEMORY_FORGE_EMBED_CACHE disables it.
// Construction never blocks on the network — Ollama model discovery and
// dimension detection happen lazily on first use (see OllamaEmbedder.load).
func NewEmbedder(provider ProviderType, model string) (Embedder, error) {
	var embedder Embedder

	switch provider {
	case ProviderStatic:
		embedder = NewStaticEmbedder()
	case ProviderOllama:
		embedder = newOllamaEmbedder(model)
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", provider)
	}

	if !isCacheDisabled() {
		embedder = NewCachedEmbedderWithDefaults(embedder)
	}

	return embedder, nil
}

func newOllamaEmbedder(model string) *OllamaEmbedder {
	cfg := DefaultOllamaConfig()
	if model != "" {
		cfg.Model = model
	}
	if host := os.Getenv("MEMORY_FORGE_OLLAMA_HOST"); host != "" {
		cfg.Host = host
	}
	return NewOllamaEmbedder(cfg)
}

func isCacheDisabled() bool {
	v := strings.ToLower(os.Getenv("MEMORY_FORGE_EMBED_CACHE"))
	return v == "false" || v == "0" || v == "off" || v == "disabled"
}

// ParseProvider converts a string (from config or CLI flag) to a
// ProviderType, defaulting to Ollama for anything unrecognized.
func ParseProvider(s string) ProviderType {
	switch strings.ToLower(s) {
	case "static":
		return ProviderStatic
	default:
		return ProviderOllama
	}
}

// String returns the string representation of ProviderType.
func (p ProviderType) String() string {
	return string(p)
}

// ValidProviders returns all valid provider names.
func ValidProviders() []string {
	return []string{string(ProviderOllama), string(ProviderStatic)}
}

// IsValidProvider checks if a provider name is valid.
func IsValidProvider(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range ValidProviders() {
		if lower == p {
			return true
		}
	}
	return false
}

// EmbedderInfo summarizes a constructed embedder (provider, model,
// dimension, reachability).
type EmbedderInfo struct {
	Provider  ProviderType
	Model     string
	Dimension int
	Available bool
}

// GetInfo inspects embedder (unwrapping a CachedEmbedder) and reports its
// provider, model, dimension, and reachability.
func GetInfo(ctx context.Context, embedder Embedder) EmbedderInfo {
	info := EmbedderInfo{
		Model:     embedder.ModelID(),
		Dimension: embedder.Dimension(),
		Available: embedder.Available(ctx),
	}

	inner := embedder
	if cached, ok := embedder.(*CachedEmbedder); ok {
		inner = cached.inner
	}

	switch inner.(type) {
	case *OllamaEmbedder:
		info.Provider = ProviderOllama
	default:
		info.Provider = ProviderStatic
	}

	return info
}
