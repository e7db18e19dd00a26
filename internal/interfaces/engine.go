package interfaces

import (
	"context"

	"nexus-trading-bot/internal/types"
)

// Engine evaluates the full pipeline once for one account/symbol pair.
type Engine interface {
	Cycle(ctx context.Context, account types.Account, symbol string) (*types.CycleResult, error)
}
