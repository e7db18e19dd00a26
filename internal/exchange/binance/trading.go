package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/types"
)

// Trading is the signed execution capability for one account's keys.
// A fresh instance is built per cycle from resolved credentials; it
// holds them only for that cycle.
type Trading struct {
	c      *resty.Client
	key    string
	secret string
}

var _ interfaces.Execution = (*Trading)(nil)

func NewTrading(baseURL string, timeout time.Duration, creds types.Credentials) *Trading {
	return &Trading{
		c:      newClient(baseURL, timeout),
		key:    creds.APIKey,
		secret: creds.APISecret,
	}
}

func (t *Trading) signedPost(ctx context.Context, path string, params url.Values) (*resty.Response, error) {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("signature", sign(t.secret, params))
	return t.c.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", t.key).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(params.Encode()).
		Post(path)
}

func (t *Trading) signedGet(ctx context.Context, path string, params url.Values) (*resty.Response, error) {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("signature", sign(t.secret, params))
	return t.c.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", t.key).
		SetQueryParamsFromValues(params).
		Get(path)
}

type orderResponse struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
	Fills   []struct {
		Price string `json:"price"`
	} `json:"fills"`
}

// SubmitMarketOrder places one market order and returns the venue ack.
func (t *Trading) SubmitMarketOrder(ctx context.Context, symbol, side string, amount float64) (types.OrderAck, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	params.Set("side", side)
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(amount, 'f', -1, 64))

	resp, err := t.signedPost(ctx, "/api/v3/order", params)
	if cerr := classify(resp, err); cerr != nil {
		return types.OrderAck{}, cerr
	}

	var or orderResponse
	if err := json.Unmarshal(resp.Body(), &or); err != nil {
		return types.OrderAck{}, fmt.Errorf("decoding order response: %w", err)
	}
	ack := types.OrderAck{
		OrderID: strconv.FormatInt(or.OrderID, 10),
		Status:  or.Status,
	}
	if len(or.Fills) > 0 {
		ack.FillPrice = parseFloat(or.Fills[0].Price)
	}
	return ack, nil
}

// PlaceConditionalOrder places a stop-triggered protective order.
// Binance distinguishes STOP_LOSS from TAKE_PROFIT by whether the
// trigger sits below or above the market, so the adapter checks the
// current ticker price to pick the type.
func (t *Trading) PlaceConditionalOrder(ctx context.Context, symbol, side string, amount, triggerPrice float64) (types.OrderAck, error) {
	mark, err := t.tickerPrice(ctx, symbol)
	if err != nil {
		return types.OrderAck{}, err
	}
	orderType := "STOP_LOSS"
	if (side == "SELL" && triggerPrice > mark) || (side == "BUY" && triggerPrice < mark) {
		orderType = "TAKE_PROFIT"
	}

	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	params.Set("side", side)
	params.Set("type", orderType)
	params.Set("quantity", strconv.FormatFloat(amount, 'f', -1, 64))
	params.Set("stopPrice", strconv.FormatFloat(triggerPrice, 'f', -1, 64))

	resp, err := t.signedPost(ctx, "/api/v3/order", params)
	if cerr := classify(resp, err); cerr != nil {
		return types.OrderAck{}, cerr
	}

	var or orderResponse
	if err := json.Unmarshal(resp.Body(), &or); err != nil {
		return types.OrderAck{}, fmt.Errorf("decoding order response: %w", err)
	}
	return types.OrderAck{OrderID: strconv.FormatInt(or.OrderID, 10), Status: or.Status}, nil
}

func (t *Trading) tickerPrice(ctx context.Context, symbol string) (float64, error) {
	resp, err := t.c.R().
		SetContext(ctx).
		SetQueryParam("symbol", marketSymbol(symbol)).
		Get("/api/v3/ticker/price")
	if cerr := classify(resp, err); cerr != nil {
		return 0, cerr
	}
	var tr struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return 0, fmt.Errorf("decoding ticker response: %w", err)
	}
	return parseFloat(tr.Price), nil
}

type accountResponse struct {
	Balances []struct {
		Asset string `json:"asset"`
		Free  string `json:"free"`
	} `json:"balances"`
}

// Balance returns the free balance of one asset.
func (t *Trading) Balance(ctx context.Context, currency string) (float64, error) {
	resp, err := t.signedGet(ctx, "/api/v3/account", url.Values{})
	if cerr := classify(resp, err); cerr != nil {
		return 0, cerr
	}

	var ar accountResponse
	if err := json.Unmarshal(resp.Body(), &ar); err != nil {
		return 0, fmt.Errorf("decoding account response: %w", err)
	}
	for _, b := range ar.Balances {
		if b.Asset == currency {
			return parseFloat(b.Free), nil
		}
	}
	return 0, nil
}
