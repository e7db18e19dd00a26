package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/types"
)

// Feed fetches OHLCV candles from the public klines endpoint. It needs
// no credentials.
type Feed struct {
	c *resty.Client
}

var _ interfaces.PriceFeed = (*Feed)(nil)

func NewFeed(baseURL string, timeout time.Duration) *Feed {
	return &Feed{c: newClient(baseURL, timeout)}
}

// Candles returns up to limit candles for the symbol and timeframe,
// validated to be strictly increasing by timestamp.
func (f *Feed) Candles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	resp, err := f.c.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":   marketSymbol(symbol),
			"interval": timeframe,
			"limit":    strconv.Itoa(limit),
		}).
		Get("/api/v3/klines")
	if cerr := classify(resp, err); cerr != nil {
		return nil, cerr
	}

	// Klines come back as arrays of mixed numbers and strings:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var raw [][]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decoding klines: %w", err)
	}

	candles := make([]types.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			return nil, fmt.Errorf("malformed kline entry with %d fields", len(k))
		}
		var ts int64
		if err := json.Unmarshal(k[0], &ts); err != nil {
			return nil, fmt.Errorf("decoding kline timestamp: %w", err)
		}
		var o, h, l, c, v string
		for i, dst := range []*string{&o, &h, &l, &c, &v} {
			if err := json.Unmarshal(k[i+1], dst); err != nil {
				return nil, fmt.Errorf("decoding kline field %d: %w", i+1, err)
			}
		}
		candles = append(candles, types.Candle{
			Ts:    ts,
			Open:  parseFloat(o),
			High:  parseFloat(h),
			Low:   parseFloat(l),
			Close: parseFloat(c),
			Vol:   parseFloat(v),
		})
	}

	for i := 1; i < len(candles); i++ {
		if candles[i].Ts <= candles[i-1].Ts {
			return nil, fmt.Errorf("kline series not strictly increasing at index %d", i)
		}
	}
	return candles, nil
}
