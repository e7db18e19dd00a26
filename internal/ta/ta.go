package ta

import (
	"math"

	"nexus-trading-bot/internal/types"
)

// Indicator functions degrade to neutral-safe values on short input
// instead of failing: a transient data gap must never crash a cycle.

// SMA returns the arithmetic mean of the last n closes. When fewer than
// n closes are available it averages the whole series.
func SMA(closes []float64, n int) float64 {
	if len(closes) == 0 {
		return 0
	}
	if n <= 0 || n > len(closes) {
		n = len(closes)
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// EMASeries returns the full exponential moving average series with
// multiplier 2/(n+1), seeded with the first price. The first-price seed
// biases early values toward the series start; callers feed enough
// history that the bias has decayed by the final value.
func EMASeries(closes []float64, n int) []float64 {
	if len(closes) == 0 {
		return nil
	}
	if n <= 0 {
		n = 1
	}
	k := 2.0 / float64(n+1)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = closes[i]*k + out[i-1]*(1-k)
	}
	return out
}

// EMA returns the final value of EMASeries.
func EMA(closes []float64, n int) float64 {
	s := EMASeries(closes, n)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// RSI computes Wilder's smoothed RSI: the initial average gain/loss is
// taken over the first period deltas, and every later delta is smoothed
// with weight 1/period. A series shorter than period+1 points returns
// the neutral 50, which marks "insufficient data" as distinct from a
// genuine extreme. A lookback with zero total loss returns 100.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		up, down := 0.0, 0.0
		if d > 0 {
			up = d
		} else {
			down = -d
		}
		avgGain = (avgGain*float64(period-1) + up) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + down) / float64(period)
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line EMA(fast)-EMA(slow), its EMA(signalN)
// signal line and the histogram. The MACD line is computed from the
// same EMA series the snapshot exposes, so the two never drift.
func MACD(closes []float64, fast, slow, signalN int) (macd, signal, hist float64) {
	ef := EMASeries(closes, fast)
	es := EMASeries(closes, slow)
	if len(ef) == 0 {
		return 0, 0, 0
	}
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = ef[i] - es[i]
	}
	sig := EMASeries(line, signalN)
	macd = line[len(line)-1]
	signal = sig[len(sig)-1]
	return macd, signal, macd - signal
}

// Volatility is the population standard deviation of simple returns
// over the series, as a percentage. Fewer than two closes yields 0.
func Volatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		rets = append(rets, closes[i]/closes[i-1]-1)
	}
	if len(rets) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	s := 0.0
	for _, r := range rets {
		d := r - mean
		s += d * d
	}
	return math.Sqrt(s/float64(len(rets))) * 100
}

// Trend classifies price against the short and long SMAs. UPTREND needs
// both SMA(short) > SMA(long) and price > SMA(short); DOWNTREND is the
// mirror; anything else is SIDEWAYS.
func Trend(price, smaShort, smaLong float64) types.Trend {
	switch {
	case smaShort > smaLong && price > smaShort:
		return types.Uptrend
	case smaShort < smaLong && price < smaShort:
		return types.Downtrend
	default:
		return types.Sideways
	}
}
