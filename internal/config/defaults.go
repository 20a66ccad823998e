package config

import (
	"github.com/ziadkadry99/agentrag/internal/chunker"
	"github.com/ziadkadry99/agentrag/internal/knowledge"
	"github.com/ziadkadry99/agentrag/internal/vectordb"
	"github.com/ziadkadry99/agentrag/internal/walker"
)

// ProviderPreset is the default model and vector size of a provider.
type ProviderPreset struct {
	Model      string
	Dimensions int
}

var providerPresets = map[ProviderType]ProviderPreset{
	ProviderOllama:      {Model: "nomic-embed-text", Dimensions: 768},
	ProviderOpenAI:      {Model: "text-embedding-3-small", Dimensions: 1536},
	ProviderGoogle:      {Model: "text-embedding-004", Dimensions: 768},
	ProviderHuggingFace: {Model: "sentence-transformers/all-MiniLM-L6-v2", Dimensions: 384},
}

// DefaultExcludes are file globs skipped during ingestion. Directories such as
// .git and node_modules are always skipped by the walker.
var DefaultExcludes = []string{
	"**/package-lock.json",
	"**/*.min.json",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	preset := providerPresets[ProviderOllama]
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   ProviderOllama,
			Model:      preset.Model,
			Dimensions: preset.Dimensions,
		},
		VectorStore: VectorStoreConfig{
			Backend:    BackendChromem,
			Dir:        ".agentrag/vectors",
			Collection: vectordb.DefaultCollection,
		},
		Chunking: ChunkingConfig{
			Size:    chunker.DefaultChunkSize,
			Overlap: chunker.DefaultChunkOverlap,
		},
		Retrieval: RetrievalConfig{
			K:        knowledge.DefaultK,
			PoolSize: knowledge.DefaultPoolSize,
			Lambda:   knowledge.DefaultLambda,
		},
		Registry: RegistryConfig{Path: ".agentrag/agentrag.db"},
		Server:   ServerConfig{Port: 8080},
		Ingest: IngestConfig{
			Include:        append([]string(nil), walker.DefaultInclude...),
			Exclude:        append([]string(nil), DefaultExcludes...),
			MaxConcurrency: 4,
		},
	}
}

// GetPreset returns the default model and dimensions for provider.
// Returns the Ollama preset if the provider is unknown.
func GetPreset(provider ProviderType) ProviderPreset {
	if p, ok := providerPresets[provider]; ok {
		return p
	}
	return providerPresets[ProviderOllama]
}
