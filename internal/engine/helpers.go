package engine

import (
	"fmt"

	"nexus-trading-bot/internal/store"
	"nexus-trading-bot/internal/ta"
	"nexus-trading-bot/internal/types"
)

func closesOf(candles []types.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// snapshotFrom recomputes the indicator snapshot for a cycle. Every
// value degrades to a neutral-safe default on short input, so a
// transient data gap never crashes the cycle loop.
func snapshotFrom(candles []types.Candle, cfg *store.Config) types.IndicatorSnapshot {
	closes := closesOf(candles)
	price := closes[len(closes)-1]

	smaShort := ta.SMA(closes, cfg.Indicators.SMAShort)
	smaLong := ta.SMA(closes, cfg.Indicators.SMALong)
	macd, signal, _ := ta.MACD(closes, cfg.Indicators.EMAFast, cfg.Indicators.EMASlow, cfg.Indicators.MACDSignal)

	return types.IndicatorSnapshot{
		Price:         price,
		RSI:           ta.RSI(closes, cfg.Indicators.RSIPeriod),
		SMAShort:      smaShort,
		SMALong:       smaLong,
		EMAFast:       ta.EMA(closes, cfg.Indicators.EMAFast),
		EMASlow:       ta.EMA(closes, cfg.Indicators.EMASlow),
		MACD:          macd,
		MACDSignal:    signal,
		VolatilityPct: ta.Volatility(closes),
		Trend:         ta.Trend(price, smaShort, smaLong),
	}
}

// cycleID identifies one evaluation of one account/symbol pair at one
// candle timestamp. The gateway guarantees at most one live submission
// per identifier.
func cycleID(accountID, symbol string, ts int64) string {
	return fmt.Sprintf("%s|%s|%d", accountID, symbol, ts)
}

// changePct is the percentage move across the fetched series, used only
// for narrative enrichment.
func changePct(candles []types.Candle) float64 {
	if len(candles) < 2 || candles[0].Close == 0 {
		return 0
	}
	first := candles[0].Close
	last := candles[len(candles)-1].Close
	return (last - first) / first * 100
}
