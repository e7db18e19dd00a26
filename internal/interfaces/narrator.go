package interfaces

import "context"

// Narrator produces a human-readable market commentary sentence. It is
// optional enrichment: implementations must respect ctx deadlines and
// fall back to a deterministic local sentence rather than returning an
// error, so a slow or absent narrator can never fail a decision.
type Narrator interface {
	Explain(ctx context.Context, price, change24h, rsi float64) string
}
