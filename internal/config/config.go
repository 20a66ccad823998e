package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/agentrag/internal/chunker"
	"github.com/ziadkadry99/agentrag/internal/knowledge"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = ".agentrag.yml"

const envPrefix = "AGENTRAG_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (AGENTRAG_*). A double underscore in a
// variable name separates nesting levels, so AGENTRAG_EMBEDDING__MODEL sets
// embedding.model.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// A provider switched without naming a model gets that provider's preset.
	if k.Exists("embedding.provider") && !k.Exists("embedding.model") {
		preset := GetPreset(cfg.Embedding.Provider)
		cfg.Embedding.Model = preset.Model
		if !k.Exists("embedding.dimensions") {
			cfg.Embedding.Dimensions = preset.Dimensions
		}
	}

	return cfg, nil
}

// envKey maps AGENTRAG_VECTOR_STORE__BACKEND to vector_store.backend.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized embedding provider values.
var validProviders = map[ProviderType]bool{
	ProviderOllama:      true,
	ProviderOpenAI:      true,
	ProviderGoogle:      true,
	ProviderHuggingFace: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding.provider %q: must be one of ollama, openai, google, huggingface", c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must be non-negative")
	}

	switch c.VectorStore.Backend {
	case BackendChromem:
	case BackendPGVector:
		if c.VectorStore.PostgresDSN == "" {
			return fmt.Errorf("vector_store.postgres_dsn is required for the pgvector backend")
		}
		if c.Embedding.Dimensions <= 0 {
			return fmt.Errorf("embedding.dimensions is required for the pgvector backend")
		}
	default:
		return fmt.Errorf("invalid vector_store.backend %q: must be chromem or pgvector", c.VectorStore.Backend)
	}

	if _, err := chunker.New(c.ChunkOptions()); err != nil {
		return fmt.Errorf("chunking: %w", err)
	}
	if err := c.RetrieverOptions().Validate(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}

	if c.Registry.Path == "" {
		return fmt.Errorf("registry.path is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Ingest.MaxConcurrency < 0 {
		return fmt.Errorf("ingest.max_concurrency must be non-negative")
	}

	return nil
}

// ChunkOptions returns the splitter options described by the config.
func (c *Config) ChunkOptions() chunker.Options {
	return chunker.Options{
		ChunkSize:    c.Chunking.Size,
		ChunkOverlap: c.Chunking.Overlap,
		Separators:   c.Chunking.Separators,
	}
}

// RetrieverOptions returns the MMR options described by the config.
func (c *Config) RetrieverOptions() knowledge.RetrieverOptions {
	return knowledge.RetrieverOptions{
		K:        c.Retrieval.K,
		PoolSize: c.Retrieval.PoolSize,
		Lambda:   c.Retrieval.Lambda,
	}
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	case ProviderHuggingFace:
		return "HF_TOKEN"
	default:
		return ""
	}
}
