package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zbowling/gmail-ai-unsub/internal/config"
	"github.com/zbowling/gmail-ai-unsub/internal/gmail"
	"github.com/zbowling/gmail-ai-unsub/internal/instrumentation"
	"github.com/zbowling/gmail-ai-unsub/internal/llm"
	"github.com/zbowling/gmail-ai-unsub/internal/state"
)

// app bundles everything the scan and unsubscribe commands share.
type app struct {
	cfg      *config.Config
	client   *gmail.Client
	store    *state.Store
	provider *instrumentation.Provider
	metrics  *instrumentation.Metrics
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	metrics := provider.Metrics()

	client, err := gmail.NewClient(ctx, cfg.Gmail.CredentialsFile, cfg.Gmail.TokenFile)
	if err != nil {
		provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create Gmail client: %w", err)
	}
	client.SetMetrics(metrics)

	store, err := state.NewStore(cfg.Storage.StateFile)
	if err != nil {
		provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	return &app{
		cfg:      cfg,
		client:   client,
		store:    store,
		provider: provider,
		metrics:  metrics,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.provider.Shutdown(ctx); err != nil {
		slog.Warn("instrumentation shutdown failed", "error", err)
	}
}

// classifierClient builds the LLM client for classification.
func (a *app) classifierClient(ctx context.Context) (llm.Client, error) {
	apiKey, err := a.cfg.LLMAPIKey()
	if err != nil {
		return nil, err
	}
	opts := llm.Options{
		Temperature: a.cfg.LLM.Temperature,
		MaxTokens:   a.cfg.LLM.MaxTokens,
	}
	if a.cfg.LLM.ThinkingLevel != nil {
		opts.ThinkingLevel = *a.cfg.LLM.ThinkingLevel
	}
	client, err := llm.New(ctx, a.cfg.LLM.Provider, a.cfg.LLM.Model, apiKey, opts)
	if err != nil {
		return nil, err
	}
	return llm.WithMetrics(client, a.metrics), nil
}

// browserClient builds the LLM client for browser automation, which may use
// a different provider and model than classification.
func (a *app) browserClient(ctx context.Context) (llm.Client, error) {
	apiKey, err := a.cfg.BrowserAPIKey()
	if err != nil {
		return nil, err
	}
	client, err := llm.New(ctx, a.cfg.BrowserProvider(), a.cfg.BrowserModel(), apiKey, llm.Options{})
	if err != nil {
		return nil, err
	}
	return llm.WithMetrics(client, a.metrics), nil
}
