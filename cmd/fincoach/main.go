// Package main runs the fincoach interactive terminal client. It keeps
// conversations in memory only; the HTTP server is the persistent
// deployment.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Cyclone1070/fincoach/internal/chat"
	"github.com/Cyclone1070/fincoach/internal/config"
	"github.com/Cyclone1070/fincoach/internal/guardrail"
	"github.com/Cyclone1070/fincoach/internal/metadata"
	"github.com/Cyclone1070/fincoach/internal/moderation"
	"github.com/Cyclone1070/fincoach/internal/prompt"
	"github.com/Cyclone1070/fincoach/internal/provider"
	"github.com/Cyclone1070/fincoach/internal/provider/gemini"
	"github.com/Cyclone1070/fincoach/internal/store"
	"github.com/Cyclone1070/fincoach/internal/ui"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func createRealProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	return gemini.New(gemini.NewRealGeminiClient(genaiClient), cfg.Provider.Model, cfg.Provider.ClassifierModel, timeout), nil
}

func run(ctx context.Context) error {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
		cfg.Guardrails.Stages = config.DefaultStages(cfg.Variant)
	}

	meta := metadata.NewStore(cfg.MetadataPath)
	if err := meta.Load(); err != nil {
		return fmt.Errorf("failed to load product metadata: %w", err)
	}

	p, err := createRealProvider(ctx, cfg)
	if err != nil {
		return err
	}

	apiKey := os.Getenv("MODERATION_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("MODERATION_API_KEY environment variable is required")
	}
	mod := moderation.NewHTTPClient(cfg.Moderation.BaseURL, apiKey,
		time.Duration(cfg.Moderation.TimeoutSeconds)*time.Second)

	stages, err := guardrail.StagesFor(cfg.Variant, cfg.Guardrails.Stages, guardrail.Deps{
		Provider:   p,
		Metadata:   meta,
		Moderation: mod,
	})
	if err != nil {
		return fmt.Errorf("failed to build guardrail stages: %w", err)
	}

	// The TUI owns the terminal, so keep logging quiet.
	logger := zap.NewNop()

	memory := store.NewMemory()
	service := chat.NewService(
		guardrail.NewPipeline(stages, logger),
		prompt.NewAssembler(cfg.Variant),
		p,
		meta,
		memory,
		memory,
		logger,
	)

	return ui.Run(service, "demo-user")
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
