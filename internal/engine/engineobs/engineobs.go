package engineobs

import (
	"context"
	"time"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/logger"
	"nexus-trading-bot/internal/trace"
	"nexus-trading-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

// Wrap adds span and cycle-timing logging around an engine.
func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{engine: eng}
}

func (oe *observableEngine) Cycle(ctx context.Context, account types.Account, symbol string) (*types.CycleResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Cycle")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting trading cycle",
		"account", account.ID,
		"symbol", symbol,
	)

	result, err := oe.engine.Cycle(ctx, account, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trading cycle failed", err,
			"account", account.ID,
			"symbol", symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Trading cycle completed",
		"account", account.ID,
		"symbol", symbol,
		"signal", result.Decision.Signal,
		"confidence", result.Decision.Confidence,
		"status", result.Outcome.Status,
		"skipped", result.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
