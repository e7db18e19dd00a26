package engine

import (
	"fmt"

	"nexus-trading-bot/internal/types"
)

// composeDecision assembles classifier and sizer output into one
// immutable TradeDecision. It is a pure function: the rationale is
// built deterministically from the same inputs as the numeric fields,
// so explanations are exactly reproducible from the decision itself.
//
// Stop-loss and take-profit sit on the correct side of the entry for
// the signal's direction: below/above for longs, reversed for shorts.
// NEUTRAL decisions always carry a zero position size and no levels.
func composeDecision(signal types.Signal, confidence float64, qty float64, snap types.IndicatorSnapshot, slPct, tpPct float64) types.TradeDecision {
	d := types.TradeDecision{
		Signal:     signal,
		Confidence: confidence,
		EntryPrice: snap.Price,
		Indicators: snap,
		Reasoning:  rationale(signal, confidence, snap),
	}

	if signal == types.SignalNeutral || qty <= 0 {
		return d
	}

	d.PositionSize = qty
	if signal.IsLong() {
		d.StopLoss = snap.Price * (1 - slPct)
		d.TakeProfit = snap.Price * (1 + tpPct)
	} else {
		d.StopLoss = snap.Price * (1 + slPct)
		d.TakeProfit = snap.Price * (1 - tpPct)
	}
	return d
}

// rationale renders the scoring evidence as one sentence. No hidden
// randomness and no external calls; an optional narrative collaborator
// may layer richer text on top but never touches the numeric fields.
func rationale(signal types.Signal, confidence float64, snap types.IndicatorSnapshot) string {
	macdSide := "above"
	if snap.MACD <= snap.MACDSignal {
		macdSide = "below"
	}
	priceSide := "above"
	if snap.Price <= snap.SMALong {
		priceSide = "below"
	}
	return fmt.Sprintf("%s: RSI %.2f, MACD %s signal line, trend %s, price %s long SMA, volatility %.2f%%, confidence %.2f",
		signal, snap.RSI, macdSide, snap.Trend, priceSide, snap.VolatilityPct, confidence)
}
