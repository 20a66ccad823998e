package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ziadkadry99/agentrag/internal/config"
	"github.com/ziadkadry99/agentrag/internal/db"
	"github.com/ziadkadry99/agentrag/internal/embeddings"
	"github.com/ziadkadry99/agentrag/internal/knowledge"
	"github.com/ziadkadry99/agentrag/internal/library"
	"github.com/ziadkadry99/agentrag/internal/registry"
	"github.com/ziadkadry99/agentrag/internal/vectordb"
)

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	ec := cfg.Embedding
	apiKey := os.Getenv(config.APIKeyEnvVar(ec.Provider))

	switch ec.Provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(ec.Model, ec.Dimensions, ec.BaseURL), nil
	case config.ProviderOpenAI:
		if apiKey == "" && ec.BaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(ec.Model), ec.BaseURL), nil
	case config.ProviderGoogle:
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required for Google embeddings")
		}
		return embeddings.NewGoogleEmbedder(apiKey, embeddings.GoogleModel(ec.Model), ec.BaseURL), nil
	case config.ProviderHuggingFace:
		return embeddings.NewHuggingFaceEmbedder(ec.Model, ec.Dimensions, ec.BaseURL, apiKey), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", ec.Provider)
	}
}

// openVectorStore opens the configured backend and checks that it answers.
func openVectorStore(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder) (vectordb.VectorStore, error) {
	var (
		store vectordb.VectorStore
		err   error
	)
	vc := cfg.VectorStore
	switch vc.Backend {
	case config.BackendPGVector:
		// The chromem collection default is not a sensible table name.
		table := vc.Collection
		if table == "" || table == vectordb.DefaultCollection {
			table = vectordb.DefaultTable
		}
		store, err = vectordb.NewPGVectorStore(ctx, vc.PostgresDSN, table, embedder.Dimensions())
	default:
		if vc.Dir == "" {
			store, err = vectordb.NewChromemStore(embedder, vc.Collection)
		} else {
			store, err = vectordb.OpenChromemStore(vc.Dir, embedder, vc.Collection)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s vector store: %w", vc.Backend, err)
	}

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("vector store unreachable: %w", err)
	}
	return store, nil
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `agentrag init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// app holds the wired components every command works through.
type app struct {
	cfg   *config.Config
	db    *db.DB
	store vectordb.VectorStore
	lib   *library.Library
}

// openApp loads the config and wires the registry, vector store and library.
// Callers must Close the result.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	debugf("embedder: %s (%d dims)", embedder.Name(), embedder.Dimensions())

	store, err := openVectorStore(ctx, cfg, embedder)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Registry.Path)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening registry: %w", err)
	}

	ix, err := knowledge.NewIndexer(cfg.ChunkOptions(), embedder, store)
	if err != nil {
		database.Close()
		store.Close()
		return nil, err
	}
	rt, err := knowledge.NewRetriever(embedder, store, cfg.RetrieverOptions())
	if err != nil {
		database.Close()
		store.Close()
		return nil, err
	}

	lib := library.New(registry.NewStore(database), ix, knowledge.NewRemover(store), rt)
	return &app{cfg: cfg, db: database, store: store, lib: lib}, nil
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.db.Close())
}

// resolveAgent accepts an agent ID or a unique agent name.
func (a *app) resolveAgent(ctx context.Context, ref string) (*registry.Agent, error) {
	if ref == "" {
		return nil, fmt.Errorf("--agent is required")
	}
	if agent, err := a.lib.GetAgent(ctx, ref); err == nil {
		return agent, nil
	} else if !errors.Is(err, library.ErrAgentNotFound) {
		return nil, err
	}

	agents, err := a.lib.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	var found *registry.Agent
	for i := range agents {
		if agents[i].Name != ref {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("agent name %q is ambiguous; use the agent ID", ref)
		}
		found = &agents[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", library.ErrAgentNotFound, ref)
	}
	return found, nil
}
