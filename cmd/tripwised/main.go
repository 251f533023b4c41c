// tripwised is the flight planner assistant server. It wires the memory
// system, the tool registry and the conversation loop together and serves
// them over HTTP.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"

	"github.com/tripwise/tripwise-go-sdk/config"
	"github.com/tripwise/tripwise-go-sdk/engine"
	"github.com/tripwise/tripwise-go-sdk/gateway/anthropic"
	"github.com/tripwise/tripwise-go-sdk/memory"
	"github.com/tripwise/tripwise-go-sdk/memory/embedder/openai"
	"github.com/tripwise/tripwise-go-sdk/memory/store/chromem"
	"github.com/tripwise/tripwise-go-sdk/memory/store/sqlite"
	"github.com/tripwise/tripwise-go-sdk/server"
	"github.com/tripwise/tripwise-go-sdk/tools"
	"github.com/tripwise/tripwise-go-sdk/trip"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Anthropic.APIKey == "" {
		log.Fatal("TRIPWISE_ANTHROPIC_API_KEY is required")
	}

	client := anthropicsdk.NewClient(option.WithAPIKey(cfg.Anthropic.APIKey))
	gw := anthropic.New(&client,
		anthropic.WithModel(cfg.Anthropic.Model),
		anthropic.WithMaxTokens(int64(cfg.Anthropic.MaxTokens)),
	)

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("create store: %v", err)
	}
	defer store.Close()

	embedder, err := openai.New(openai.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		APIKey:  cfg.Embeddings.APIKey,
		Model:   cfg.Embeddings.Model,
	})
	if err != nil {
		log.Fatalf("create embedder: %v", err)
	}
	cached, err := memory.NewCachedEmbedder(embedder)
	if err != nil {
		log.Fatalf("create embedding cache: %v", err)
	}
	defer cached.Close()

	manager := memory.NewManager(store, cached, nil)

	registry := engine.NewToolRegistry()
	tools.RegisterPlannerTool(registry, gw, trip.DefaultInventory)
	tools.RegisterMemoryTools(registry, manager)

	loop := engine.NewLoop(gw, registry,
		engine.WithMaxIterations(cfg.MaxIterations))

	srv := server.New(loop, server.Config{
		Addr:         cfg.Server.Addr,
		SystemPrompt: tools.AssistantSystemPrompt,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
	log.Println("[MAIN] shutdown complete")
}

func newStore(cfg *config.Config) (memory.Store, error) {
	if cfg.Store.Backend == "sqlite" {
		log.Printf("[MAIN] using sqlite store at %s", cfg.Store.Path)
		return sqlite.New(cfg.Store.Path)
	}
	log.Println("[MAIN] using in-memory chromem store")
	return chromem.New()
}
