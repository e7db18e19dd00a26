package execobs

import (
	"context"
	"time"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/logger"
	"nexus-trading-bot/internal/trace"
	"nexus-trading-bot/internal/types"
)

type observableExecution struct {
	exec interfaces.Execution
}

var _ interfaces.Execution = (*observableExecution)(nil)

// Wrap adds span and latency logging around an execution capability.
func Wrap(exec interfaces.Execution) interfaces.Execution {
	return &observableExecution{exec: exec}
}

func (oe *observableExecution) SubmitMarketOrder(ctx context.Context, symbol, side string, amount float64) (types.OrderAck, error) {
	ctx, span := trace.StartSpan(ctx, "execution.SubmitMarketOrder")
	defer span.End()

	start := time.Now()
	ack, err := oe.exec.SubmitMarketOrder(ctx, symbol, side, amount)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Market order failed", err,
			"symbol", symbol,
			"side", side,
			"amount", amount,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return ack, err
	}

	logger.InfoSkip(ctx, 1, "Market order accepted",
		"symbol", symbol,
		"side", side,
		"amount", amount,
		"order_id", ack.OrderID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ack, nil
}

func (oe *observableExecution) PlaceConditionalOrder(ctx context.Context, symbol, side string, amount, triggerPrice float64) (types.OrderAck, error) {
	ctx, span := trace.StartSpan(ctx, "execution.PlaceConditionalOrder")
	defer span.End()

	ack, err := oe.exec.PlaceConditionalOrder(ctx, symbol, side, amount, triggerPrice)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Conditional order failed", err,
			"symbol", symbol,
			"side", side,
			"trigger_price", triggerPrice,
		)
		return ack, err
	}

	logger.Debug(ctx, "Conditional order accepted",
		"symbol", symbol,
		"side", side,
		"trigger_price", triggerPrice,
		"order_id", ack.OrderID,
	)
	return ack, nil
}

func (oe *observableExecution) Balance(ctx context.Context, currency string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "execution.Balance")
	defer span.End()

	bal, err := oe.exec.Balance(ctx, currency)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Balance query failed", err, "currency", currency)
		return 0, err
	}
	logger.Debug(ctx, "Balance fetched", "currency", currency, "balance", bal)
	return bal, nil
}
