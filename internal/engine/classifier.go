package engine

import (
	"math"

	"nexus-trading-bot/internal/types"
)

// signalClassifier maps an indicator snapshot to a discrete signal and
// an advisory confidence score using a fixed linear scoring rule. The
// rule is deliberately auditable: the same snapshot always reproduces
// the same signal.
type signalClassifier struct {
	oversold         float64
	overbought       float64
	strongOversold   float64
	strongOverbought float64
}

func newSignalClassifier(oversold, overbought, strongOversold, strongOverbought float64) *signalClassifier {
	return &signalClassifier{
		oversold:         oversold,
		overbought:       overbought,
		strongOversold:   strongOversold,
		strongOverbought: strongOverbought,
	}
}

// score computes the integer conviction score for a snapshot.
func (sc *signalClassifier) score(snap types.IndicatorSnapshot) int {
	score := 0

	switch {
	case snap.RSI < sc.strongOversold:
		score += 2
	case snap.RSI < sc.oversold:
		score++
	case snap.RSI > sc.strongOverbought:
		score -= 2
	case snap.RSI > sc.overbought:
		score--
	}

	if snap.MACD > snap.MACDSignal {
		score++
	} else {
		score--
	}

	switch snap.Trend {
	case types.Uptrend:
		score++
	case types.Downtrend:
		score--
	}

	if snap.Price > snap.SMALong {
		score++
	} else {
		score--
	}

	return score
}

// classify returns the signal for a snapshot plus its confidence.
// The score-to-signal mapping is monotonic: a higher score never yields
// a lower-conviction signal.
func (sc *signalClassifier) classify(snap types.IndicatorSnapshot) (types.Signal, float64) {
	score := sc.score(snap)

	var signal types.Signal
	switch {
	case score >= 3:
		signal = types.SignalStrongBuy
	case score >= 1:
		signal = types.SignalBuy
	case score <= -3:
		signal = types.SignalStrongSell
	case score <= -1:
		signal = types.SignalSell
	default:
		signal = types.SignalNeutral
	}

	return signal, sc.confidence(snap)
}

// confidence is the mean of four independent [0,1] factors: RSI
// distance from the 50 midline, inverse volatility, MACD divergence
// magnitude relative to price, and a fixed trend bonus. It feeds
// position sizing and is advisory only, not a probability.
func (sc *signalClassifier) confidence(snap types.IndicatorSnapshot) float64 {
	rsiFactor := clamp01(math.Abs(snap.RSI-50) / 50)

	// 10% return volatility or above reads as zero stability.
	volFactor := clamp01(1 - snap.VolatilityPct/10)

	macdFactor := 0.0
	if snap.Price > 0 {
		macdFactor = clamp01(math.Abs(snap.MACD-snap.MACDSignal) / snap.Price * 100)
	}

	trendFactor := 0.3
	if snap.Trend != types.Sideways {
		trendFactor = 0.8
	}

	return clamp01((rsiFactor + volFactor + macdFactor + trendFactor) / 4)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
