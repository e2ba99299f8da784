// Package main runs the fincoach HTTP API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cyclone1070/fincoach/internal/chat"
	"github.com/Cyclone1070/fincoach/internal/config"
	"github.com/Cyclone1070/fincoach/internal/guardrail"
	"github.com/Cyclone1070/fincoach/internal/metadata"
	"github.com/Cyclone1070/fincoach/internal/moderation"
	"github.com/Cyclone1070/fincoach/internal/prompt"
	"github.com/Cyclone1070/fincoach/internal/provider"
	"github.com/Cyclone1070/fincoach/internal/provider/gemini"
	"github.com/Cyclone1070/fincoach/internal/server"
	"github.com/Cyclone1070/fincoach/internal/store"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Dependencies holds the components required to run the server.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metadata   *metadata.Store
	Provider   provider.Provider
	Moderation moderation.Client
	Store      *store.SQLite
}

func createLogger() (*zap.Logger, error) {
	if os.Getenv("FINCOACH_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

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

func createRealModeration(cfg *config.Config) (moderation.Client, error) {
	apiKey := os.Getenv("MODERATION_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("MODERATION_API_KEY environment variable is required")
	}

	timeout := time.Duration(cfg.Moderation.TimeoutSeconds) * time.Second
	return moderation.NewHTTPClient(cfg.Moderation.BaseURL, apiKey, timeout), nil
}

func createDependencies(ctx context.Context) (*Dependencies, error) {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := createLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	meta := metadata.NewStore(cfg.MetadataPath)
	if err := meta.Load(); err != nil {
		return nil, fmt.Errorf("failed to load product metadata: %w", err)
	}

	p, err := createRealProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mod, err := createRealModeration(cfg)
	if err != nil {
		return nil, err
	}

	db, err := store.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &Dependencies{
		Config:     cfg,
		Logger:     logger,
		Metadata:   meta,
		Provider:   p,
		Moderation: mod,
		Store:      db,
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := createDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = deps.Logger.Sync() }()
	defer func() { _ = deps.Store.Close() }()

	if err := run(ctx, deps); err != nil {
		deps.Logger.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, deps *Dependencies) error {
	cfg := deps.Config

	stages, err := guardrail.StagesFor(cfg.Variant, cfg.Guardrails.Stages, guardrail.Deps{
		Provider:   deps.Provider,
		Metadata:   deps.Metadata,
		Moderation: deps.Moderation,
	})
	if err != nil {
		return fmt.Errorf("failed to build guardrail stages: %w", err)
	}
	pipeline := guardrail.NewPipeline(stages, deps.Logger)

	service := chat.NewService(
		pipeline,
		prompt.NewAssembler(cfg.Variant),
		deps.Provider,
		deps.Metadata,
		deps.Store,
		deps.Store,
		deps.Logger,
	)

	handler := server.New(service, deps.Store, deps.Metadata, deps.Logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("variant", string(cfg.Variant)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	deps.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
