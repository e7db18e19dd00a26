// Package binance adapts the Binance spot REST API to the decision
// core's collaborator interfaces: a public price feed and a signed
// execution capability. Venue failures are classified into the core's
// error taxonomy so the gateway can tag outcomes with distinct reasons.
package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"nexus-trading-bot/internal/types"
)

const defaultBaseURL = "https://api.binance.com"

func newClient(baseURL string, timeout time.Duration) *resty.Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

// marketSymbol converts "BTC/USDT" to the venue's "BTCUSDT" form.
func marketSymbol(symbol string) string {
	out := make([]byte, 0, len(symbol))
	for i := 0; i < len(symbol); i++ {
		if symbol[i] != '/' {
			out = append(out, symbol[i])
		}
	}
	return string(out)
}

func sign(secret string, query url.Values) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(query.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// classify maps a transport failure or venue error response into the
// core taxonomy. Distinct causes stay distinct.
func classify(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrNetwork, err)
	}
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() >= 500 || resp.StatusCode() == 429 {
		return fmt.Errorf("%w: http %d", types.ErrNetwork, resp.StatusCode())
	}

	var ae apiError
	if jerr := json.Unmarshal(resp.Body(), &ae); jerr == nil && ae.Code != 0 {
		switch ae.Code {
		case -2010, -2019:
			return fmt.Errorf("%w: %s", types.ErrInsufficientFunds, ae.Msg)
		case -1022, -2014, -2015:
			return fmt.Errorf("%w: %s", types.ErrAuthentication, ae.Msg)
		default:
			return fmt.Errorf("order rejected (code %d): %s", ae.Code, ae.Msg)
		}
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return fmt.Errorf("%w: http %d", types.ErrAuthentication, resp.StatusCode())
	}
	return fmt.Errorf("order rejected: http %d: %s", resp.StatusCode(), resp.String())
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
