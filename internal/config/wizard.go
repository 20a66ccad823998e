package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to agentrag! Let's configure your document store.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Embedding provider.
	providers := []ProviderType{ProviderOllama, ProviderOpenAI, ProviderGoogle, ProviderHuggingFace}
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{
			"ollama      (local, nomic-embed-text)",
			"openai      (text-embedding-3-small)",
			"google      (text-embedding-004)",
			"huggingface (all-MiniLM-L6-v2)",
		},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Embedding.Provider = providers[providerIdx]
	preset := GetPreset(cfg.Embedding.Provider)

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: preset.Model,
	}
	if cfg.Embedding.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}
	cfg.Embedding.Dimensions = preset.Dimensions
	if cfg.Embedding.Model != preset.Model {
		dimsPrompt := promptui.Prompt{
			Label:    "Embedding dimensions",
			Default:  strconv.Itoa(preset.Dimensions),
			Validate: validatePositiveInt,
		}
		dims, err := dimsPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("embedding dimensions: %w", err)
		}
		cfg.Embedding.Dimensions, _ = strconv.Atoi(dims)
	}

	// 3. Vector store.
	backendPrompt := promptui.Select{
		Label: "Select vector store",
		Items: []string{
			"chromem  (embedded, stored on disk)",
			"pgvector (PostgreSQL with the vector extension)",
		},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("vector store selection: %w", err)
	}
	if backendIdx == 1 {
		cfg.VectorStore.Backend = BackendPGVector
		cfg.VectorStore.Dir = ""
		dsnPrompt := promptui.Prompt{
			Label:   "PostgreSQL DSN",
			Default: "postgres://localhost:5432/agentrag?sslmode=disable",
		}
		if cfg.VectorStore.PostgresDSN, err = dsnPrompt.Run(); err != nil {
			return nil, fmt.Errorf("postgres dsn: %w", err)
		}
	} else {
		dirPrompt := promptui.Prompt{
			Label:   "Vector store directory",
			Default: cfg.VectorStore.Dir,
		}
		if cfg.VectorStore.Dir, err = dirPrompt.Run(); err != nil {
			return nil, fmt.Errorf("vector store dir: %w", err)
		}
	}

	// 4. Chunking.
	sizePrompt := promptui.Prompt{
		Label:    "Chunk size (characters)",
		Default:  strconv.Itoa(cfg.Chunking.Size),
		Validate: validatePositiveInt,
	}
	size, err := sizePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chunk size: %w", err)
	}
	cfg.Chunking.Size, _ = strconv.Atoi(size)
	if cfg.Chunking.Overlap >= cfg.Chunking.Size {
		cfg.Chunking.Overlap = cfg.Chunking.Size / 4
	}

	// 5. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	cfg.Ingest.Exclude = append(cfg.Ingest.Exclude, splitAndTrim(excludeStr)...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Embedding.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment or a .env file before indexing.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
