package interfaces

import (
	"context"

	"nexus-trading-bot/internal/types"
)

// PriceFeed supplies ordered OHLCV candles for one symbol. The returned
// series is strictly increasing by timestamp and immutable for the
// duration of a cycle.
type PriceFeed interface {
	Candles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)
}
