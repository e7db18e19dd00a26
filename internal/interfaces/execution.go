package interfaces

import (
	"context"

	"nexus-trading-bot/internal/types"
)

// Execution is the minimal order-submission capability the gateway
// drives: place a market order, place a protective conditional order,
// query a balance. Implementations classify venue failures into the
// types error taxonomy.
type Execution interface {
	SubmitMarketOrder(ctx context.Context, symbol, side string, amount float64) (types.OrderAck, error)
	PlaceConditionalOrder(ctx context.Context, symbol, side string, amount, triggerPrice float64) (types.OrderAck, error)
	Balance(ctx context.Context, currency string) (float64, error)
}

// ExecutionProvider resolves the execution capability for one account.
// It returns types.ErrCredentialsMissing when the account has no stored
// keys, in which case the cycle for that account is skipped.
type ExecutionProvider interface {
	ForAccount(ctx context.Context, account types.Account) (Execution, error)
}
