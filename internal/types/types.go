package types

// Candle is one OHLCV bar. Ts is the bar open time in unix milliseconds.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Trend classifies the SMA/price relationship.
type Trend string

const (
	Uptrend   Trend = "UPTREND"
	Downtrend Trend = "DOWNTREND"
	Sideways  Trend = "SIDEWAYS"
)

// IndicatorSnapshot is recomputed from the candle series every cycle.
// It has no identity of its own.
type IndicatorSnapshot struct {
	Price         float64 `json:"price"`
	RSI           float64 `json:"rsi"`
	SMAShort      float64 `json:"sma_short"`
	SMALong       float64 `json:"sma_long"`
	EMAFast       float64 `json:"ema_fast"`
	EMASlow       float64 `json:"ema_slow"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macd_signal"`
	VolatilityPct float64 `json:"volatility_pct"`
	Trend         Trend   `json:"trend"`
}

// Signal is the discrete trading signal, ordered by conviction and
// symmetric around SignalNeutral.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalNeutral    Signal = "NEUTRAL"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

// Rank orders signals by conviction: +2 for STRONG_BUY down to -2 for
// STRONG_SELL. NEUTRAL is 0.
func (s Signal) Rank() int {
	switch s {
	case SignalStrongBuy:
		return 2
	case SignalBuy:
		return 1
	case SignalSell:
		return -1
	case SignalStrongSell:
		return -2
	}
	return 0
}

// IsLong reports whether the signal opens a long position.
func (s Signal) IsLong() bool { return s == SignalBuy || s == SignalStrongBuy }

// IsShort reports whether the signal opens a short position.
func (s Signal) IsShort() bool { return s == SignalSell || s == SignalStrongSell }

// Side returns the order side for the signal, or "" for NEUTRAL.
func (s Signal) Side() string {
	if s.IsLong() {
		return "BUY"
	}
	if s.IsShort() {
		return "SELL"
	}
	return ""
}

// TradeDecision is the immutable output of one analysis cycle.
// If Signal is NEUTRAL, PositionSize is always 0 and no order is submitted.
type TradeDecision struct {
	Signal       Signal            `json:"signal"`
	Confidence   float64           `json:"confidence"`
	EntryPrice   float64           `json:"entry_price"`
	StopLoss     float64           `json:"stop_loss"`
	TakeProfit   float64           `json:"take_profit"`
	PositionSize float64           `json:"position_size"`
	Reasoning    string            `json:"reasoning"`
	Indicators   IndicatorSnapshot `json:"indicators"`
}

// OrderStatus is the terminal classification of an execution attempt.
type OrderStatus string

const (
	// OrderPending means the decision never reached the venue. This is
	// the common outcome for NEUTRAL cycles, not an error.
	OrderPending OrderStatus = "PENDING"
	OrderSuccess OrderStatus = "SUCCESS"
	OrderFailed  OrderStatus = "FAILED"
)

// OrderOutcome is produced once per submitted decision and never mutated.
type OrderOutcome struct {
	Status    OrderStatus `json:"status"`
	OrderID   string      `json:"order_id,omitempty"`
	Side      string      `json:"side,omitempty"`
	Amount    float64     `json:"amount"`
	FillPrice float64     `json:"fill_price,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	Error     string      `json:"error,omitempty"`
	Simulated bool        `json:"simulated,omitempty"`
}

// OrderAck is the venue's acknowledgement of an accepted order.
type OrderAck struct {
	OrderID   string
	Status    string
	FillPrice float64
}

// Credentials are resolved, decrypted exchange keys. The core never
// stores these; they live only for the duration of one cycle.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Account is the read-only per-account context for a cycle.
type Account struct {
	ID string `yaml:"id" json:"id"`
}

// CycleResult summarizes one full evaluation of the pipeline for one
// account/symbol pair.
type CycleResult struct {
	Account   string        `json:"account"`
	Symbol    string        `json:"symbol"`
	Price     float64       `json:"price"`
	Time      int64         `json:"time"`
	Decision  TradeDecision `json:"decision"`
	Outcome   OrderOutcome  `json:"outcome"`
	Narrative string        `json:"narrative,omitempty"`
	Skipped   string        `json:"skipped,omitempty"`
}
