package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/logger"
	"nexus-trading-bot/internal/store"
	"nexus-trading-bot/internal/trace"
	"nexus-trading-bot/internal/tradelog"
	"nexus-trading-bot/internal/types"
)

func main() {
	if err := initializeSystem(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	tlog := tradelog.New("")
	compressOldLogs(ctx, tlog)

	eng := buildEngine(ctx, cfg, tlog)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Bot started",
		"mode", cfg.Mode,
		"accounts", len(cfg.Accounts),
		"symbols", cfg.Symbols,
		"poll_seconds", cfg.PollSeconds,
	)

	for {
		select {
		case <-tick.C:
			runCycles(ctx, cfg, eng)
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			if p, err := tlog.SummarizeDay(time.Now().UTC()); err == nil && p != "" {
				logger.Info(ctx, "Daily summary written", "path", p)
			}
			_ = trace.Shutdown(ctx)
			return
		case <-ctx.Done():
			_ = trace.Shutdown(context.Background())
			return
		}
	}
}

// runCycles evaluates every account in parallel. Accounts are fully
// independent; one account's failure or timeout never blocks the rest,
// and a cycle that overruns its budget is abandoned for that account
// only.
func runCycles(ctx context.Context, cfg *store.Config, eng interfaces.Engine) {
	var wg sync.WaitGroup
	for _, ac := range cfg.Accounts {
		wg.Add(1)
		go func(ac store.AccountConfig) {
			defer wg.Done()
			account := types.Account{ID: ac.ID}
			for _, symbol := range cfg.Symbols {
				cctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.CycleTimeoutSeconds)*time.Second)
				if _, err := eng.Cycle(cctx, account, symbol); err != nil {
					logger.ErrorWithErr(cctx, "Cycle error", err, "account", ac.ID, "symbol", symbol)
				}
				cancel()
			}
		}(ac)
	}
	wg.Wait()
}
