package config

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOllama      ProviderType = "ollama"
	ProviderOpenAI      ProviderType = "openai"
	ProviderGoogle      ProviderType = "google"
	ProviderHuggingFace ProviderType = "huggingface"
)

// BackendType identifies a vector store backend.
type BackendType string

const (
	BackendChromem  BackendType = "chromem"
	BackendPGVector BackendType = "pgvector"
)

// Config is the top-level agentrag configuration, corresponding to .agentrag.yml.
type Config struct {
	Embedding   EmbeddingConfig   `yaml:"embedding" koanf:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store" koanf:"vector_store"`
	Chunking    ChunkingConfig    `yaml:"chunking" koanf:"chunking"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" koanf:"retrieval"`
	Registry    RegistryConfig    `yaml:"registry" koanf:"registry"`
	Server      ServerConfig      `yaml:"server" koanf:"server"`
	Ingest      IngestConfig      `yaml:"ingest" koanf:"ingest"`
}

// EmbeddingConfig selects the embedding provider and model.
type EmbeddingConfig struct {
	Provider   ProviderType `yaml:"provider" koanf:"provider"`
	Model      string       `yaml:"model" koanf:"model"`
	BaseURL    string       `yaml:"base_url,omitempty" koanf:"base_url"`
	Dimensions int          `yaml:"dimensions" koanf:"dimensions"`
}

// VectorStoreConfig selects where chunk embeddings live.
type VectorStoreConfig struct {
	Backend     BackendType `yaml:"backend" koanf:"backend"`
	Dir         string      `yaml:"dir,omitempty" koanf:"dir"` // empty keeps chromem in memory
	PostgresDSN string      `yaml:"postgres_dsn,omitempty" koanf:"postgres_dsn"`
	Collection  string      `yaml:"collection" koanf:"collection"`
}

// ChunkingConfig holds chunk size and overlap in characters.
type ChunkingConfig struct {
	Size       int      `yaml:"size" koanf:"size"`
	Overlap    int      `yaml:"overlap" koanf:"overlap"`
	Separators []string `yaml:"separators,omitempty" koanf:"separators"`
}

// RetrievalConfig tunes diversity-aware search.
type RetrievalConfig struct {
	K        int     `yaml:"k" koanf:"k"`
	PoolSize int     `yaml:"pool_size" koanf:"pool_size"`
	Lambda   float64 `yaml:"lambda" koanf:"lambda"`
}

// RegistryConfig locates the SQLite database of agents and documents.
type RegistryConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// ServerConfig holds REST server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// IngestConfig holds directory ingestion settings.
type IngestConfig struct {
	Include        []string `yaml:"include" koanf:"include"`
	Exclude        []string `yaml:"exclude" koanf:"exclude"`
	MaxConcurrency int      `yaml:"max_concurrency" koanf:"max_concurrency"`
}
