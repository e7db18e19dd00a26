package narrative

import (
	"context"

	"nexus-trading-bot/internal/interfaces"
)

// Local is the deterministic fallback narrator. The same inputs always
// produce the same sentence, so tests and replays are reproducible.
type Local struct{}

var _ interfaces.Narrator = (*Local)(nil)

func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Explain(ctx context.Context, price, change24h, rsi float64) string {
	return fallbackSentence(rsi)
}

func fallbackSentence(rsi float64) string {
	switch {
	case rsi > 70:
		return "Overbought conditions detected. Likely retracement."
	case rsi < 30:
		return "Oversold zone. Potential reversal incoming."
	default:
		return "Neutral consolidation phase."
	}
}
