// Package paper is the simulated execution capability. It runs the
// identical pipeline as live trading but replaces the final placement
// call with a synthetic success record carrying a generated identifier.
// Paper mode is an explicit configuration flag, never inferred from
// missing credentials.
package paper

import (
	"context"

	"github.com/google/uuid"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/logger"
	"nexus-trading-bot/internal/types"
)

type Execution struct {
	balance float64
}

var _ interfaces.Execution = (*Execution)(nil)

// New returns a paper execution capability reporting the given starting
// balance for every balance query.
func New(startingBalance float64) *Execution {
	return &Execution{balance: startingBalance}
}

func (p *Execution) SubmitMarketOrder(ctx context.Context, symbol, side string, amount float64) (types.OrderAck, error) {
	id := uuid.NewString()[:8]
	logger.Info(ctx, "Paper order filled",
		"symbol", symbol,
		"side", side,
		"amount", amount,
		"order_id", id,
	)
	return types.OrderAck{OrderID: id, Status: "SIMULATED"}, nil
}

func (p *Execution) PlaceConditionalOrder(ctx context.Context, symbol, side string, amount, triggerPrice float64) (types.OrderAck, error) {
	id := uuid.NewString()[:8]
	logger.Debug(ctx, "Paper conditional order accepted",
		"symbol", symbol,
		"side", side,
		"trigger_price", triggerPrice,
		"order_id", id,
	)
	return types.OrderAck{OrderID: id, Status: "SIMULATED"}, nil
}

func (p *Execution) Balance(ctx context.Context, currency string) (float64, error) {
	return p.balance, nil
}
