package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"nexus-trading-bot/internal/credentials"
	"nexus-trading-bot/internal/engine"
	"nexus-trading-bot/internal/engine/engineobs"
	"nexus-trading-bot/internal/exchange"
	"nexus-trading-bot/internal/exchange/binance"
	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/logger"
	"nexus-trading-bot/internal/narrative"
	"nexus-trading-bot/internal/store"
	"nexus-trading-bot/internal/trace"
	"nexus-trading-bot/internal/tradelog"
)

// initializeSystem loads the environment and brings up logging and
// tracing before anything else runs.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("NEXUS_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context, log *tradelog.Log) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := log.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// buildEngine wires the feed, execution provider, narrator and recorder
// into the decision engine, wrapped with observability.
func buildEngine(ctx context.Context, cfg *store.Config, log *tradelog.Log) interfaces.Engine {
	timeout := time.Duration(cfg.CycleTimeoutSeconds) * time.Second
	baseURL := os.Getenv("BINANCE_BASE_URL")

	feed := binance.NewFeed(baseURL, timeout)

	resolver := credentials.NewStore(os.Getenv("NEXUS_MASTER_KEY"), cfg.Accounts)
	provider := exchange.NewProvider(resolver, cfg.Mode == "PAPER", baseURL, timeout, cfg.Paper.StartingBalance)

	if cfg.Mode == "PAPER" {
		logger.Warn(ctx, "Running in PAPER mode - orders will be simulated")
	} else {
		logger.Info(ctx, "Running in LIVE mode - orders will reach the venue")
	}

	var narrator interfaces.Narrator
	if cfg.Narrative.Enabled {
		narrator = narrative.NewGemini(cfg.Narrative.Models)
		logger.Info(ctx, "Narrative enrichment enabled", "models", cfg.Narrative.Models)
	} else {
		narrator = narrative.NewLocal()
	}

	return engineobs.Wrap(engine.New(cfg, feed, provider, narrator, log))
}
