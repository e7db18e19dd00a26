package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"nexus-trading-bot/internal/logger"
	"nexus-trading-bot/internal/types"
)

// sizePrecision is the fixed decimal precision order quantities are
// floored to before submission.
const sizePrecision = 6

// riskSizer converts balance, entry price and risk parameters into a
// bounded position size that respects the exchange minimum order size
// and the hard maximum-risk ceiling.
type riskSizer struct {
	baseRiskPct  float64
	maxRiskPct   float64
	minOrderSize float64
}

func newRiskSizer(baseRiskPct, maxRiskPct, minOrderSize float64) *riskSizer {
	return &riskSizer{
		baseRiskPct:  baseRiskPct,
		maxRiskPct:   maxRiskPct,
		minOrderSize: minOrderSize,
	}
}

// adjustedRiskPct scales the configured risk percentage by regime:
// up in high-confidence strong-buy conditions, down in bearish ones.
// The result never exceeds the hard ceiling.
func (rs *riskSizer) adjustedRiskPct(signal types.Signal, confidence float64) float64 {
	pct := rs.baseRiskPct
	switch {
	case signal == types.SignalStrongBuy && confidence >= 0.7:
		pct *= 1.5
	case signal.IsShort():
		pct *= 0.5
	}
	if pct > rs.maxRiskPct {
		pct = rs.maxRiskPct
	}
	return pct
}

// size computes quantity = (balance * riskPct) / (entry * slPct),
// floored to sizePrecision decimals and clamped to >= 0. A quantity
// below the exchange minimum is raised to that minimum, never silently
// dropped; if the raised size would then breach the maximum-risk
// ceiling the order is skipped entirely with a reported reason.
//
// Returns the quantity and, when the order must be skipped, a non-empty
// outcome reason code.
func (rs *riskSizer) size(ctx context.Context, symbol string, balance, entry, riskPct, slPct float64) (float64, string) {
	if balance <= 0 || entry <= 0 || riskPct <= 0 || slPct <= 0 {
		return 0, types.ReasonZeroSize
	}

	raw := (balance * riskPct) / (entry * slPct)
	qty, _ := decimal.NewFromFloat(raw).Truncate(sizePrecision).Float64()
	if qty < 0 {
		qty = 0
	}

	if qty < rs.minOrderSize {
		qty = rs.minOrderSize
		// Re-verify the raised size against the risk ceiling: risk at
		// the stop equals qty * entry * slPct.
		if qty*entry*slPct > balance*rs.maxRiskPct {
			logger.Risk(ctx, symbol, "MIN_SIZE_EXCEEDS_RISK_CEILING",
				"raw_qty", raw,
				"min_order_size", rs.minOrderSize,
				"entry", entry,
				"balance", balance,
				"max_risk_pct", rs.maxRiskPct,
			)
			return 0, types.ReasonRiskCeiling
		}
	}

	return qty, ""
}
