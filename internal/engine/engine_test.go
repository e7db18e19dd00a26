package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/store"
	"nexus-trading-bot/internal/types"
)

type fakeFeed struct {
	closes []float64
	err    error
}

func (f *fakeFeed) Candles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	candles := make([]types.Candle, len(f.closes))
	for i, c := range f.closes {
		candles[i] = types.Candle{Ts: 1700000000000 + int64(i)*300000, Close: c}
	}
	return candles, nil
}

type fakeProvider struct {
	exec interfaces.Execution
	err  error
}

func (p *fakeProvider) ForAccount(ctx context.Context, account types.Account) (interfaces.Execution, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.exec, nil
}

type stubNarrator struct{}

func (stubNarrator) Explain(ctx context.Context, price, change24h, rsi float64) string {
	return "stub commentary"
}

type memRecorder struct {
	mu        sync.Mutex
	decisions []types.TradeDecision
	outcomes  []types.OrderOutcome
}

func (r *memRecorder) RecordDecision(account, symbol string, d types.TradeDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, d)
	return nil
}

func (r *memRecorder) RecordOutcome(account, symbol string, d types.TradeDecision, o types.OrderOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	return nil
}

func testConfig() *store.Config {
	cfg := &store.Config{
		Mode:          "PAPER",
		Timeframe:     "5m",
		PollSeconds:   60,
		CandleLimit:   40,
		QuoteCurrency: "USDT",
		Symbols:       []string{"BTC/USDT"},
		Accounts:      []store.AccountConfig{{ID: "acct-1"}},

		CycleTimeoutSeconds: 30,
	}
	cfg.Indicators.RSIPeriod = 14
	cfg.Indicators.SMAShort = 10
	cfg.Indicators.SMALong = 30
	cfg.Indicators.EMAFast = 12
	cfg.Indicators.EMASlow = 26
	cfg.Indicators.MACDSignal = 9
	cfg.Thresholds.RSIStrongOversold = 20
	cfg.Thresholds.RSIOversold = 30
	cfg.Thresholds.RSIOverbought = 70
	cfg.Thresholds.RSIStrongOverbought = 80
	cfg.Risk.RiskPct = 0.01
	cfg.Risk.MaxRiskPct = 0.05
	cfg.Risk.StopLossPct = 0.02
	cfg.Risk.TakeProfitPct = 0.04
	cfg.Risk.MinOrderSize = 0.001
	cfg.Narrative.TimeoutSeconds = 1
	return cfg
}

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

// alternatingCloses oscillates between 100 and 101, ending on 101.
func alternatingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 101
		}
	}
	return closes
}

func TestCycleSkipsAccountWithoutCredentials(t *testing.T) {
	exec := &spyExec{balance: 10000}
	eng := New(testConfig(),
		&fakeFeed{closes: risingCloses(40)},
		&fakeProvider{err: fmt.Errorf("%w: account acct-1", types.ErrCredentialsMissing)},
		stubNarrator{},
		&memRecorder{},
	)

	res, err := eng.Cycle(context.Background(), types.Account{ID: "acct-1"}, "BTC/USDT")

	require.NoError(t, err, "a credentials gap is a skip, not a failure")
	require.NotNil(t, res)
	assert.Equal(t, "CREDENTIALS_MISSING", res.Skipped)
	assert.Zero(t, exec.submits)
	assert.Zero(t, exec.balanceCalls)
}

func TestCycleBuySignalSubmitsOrder(t *testing.T) {
	exec := &spyExec{balance: 10000}
	rec := &memRecorder{}
	eng := New(testConfig(),
		&fakeFeed{closes: risingCloses(40)},
		&fakeProvider{exec: exec},
		stubNarrator{},
		rec,
	)

	res, err := eng.Cycle(context.Background(), types.Account{ID: "acct-1"}, "BTC/USDT")

	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, types.SignalBuy, res.Decision.Signal)
	require.Equal(t, types.OrderSuccess, res.Outcome.Status)

	assert.Equal(t, 1, exec.submits)
	assert.Equal(t, "BUY", exec.lastSide)
	// (10000 * 0.01) / (139 * 0.02), floored to six decimals.
	assert.InDelta(t, 35.971223, exec.lastAmount, 1e-9)
	assert.Equal(t, 2, exec.conditionals, "stop-loss and take-profit placed after the fill")

	assert.InDelta(t, 139*0.98, res.Decision.StopLoss, 1e-9)
	assert.InDelta(t, 139*1.04, res.Decision.TakeProfit, 1e-9)
	assert.Equal(t, 139.0, res.Price)
	assert.Equal(t, "stub commentary", res.Narrative)

	require.Len(t, rec.decisions, 1)
	require.Len(t, rec.outcomes, 1)
	assert.Equal(t, types.OrderSuccess, rec.outcomes[0].Status)
}

func TestCycleNeutralNeverTouchesExecution(t *testing.T) {
	cfg := testConfig()
	// Widen the neutral band so the flat oscillating series scores zero.
	cfg.Thresholds.RSIStrongOversold = 10
	cfg.Thresholds.RSIOversold = 20
	cfg.Thresholds.RSIOverbought = 45
	cfg.Thresholds.RSIStrongOverbought = 49

	exec := &spyExec{balance: 10000}
	rec := &memRecorder{}
	eng := New(cfg,
		&fakeFeed{closes: alternatingCloses(40)},
		&fakeProvider{exec: exec},
		stubNarrator{},
		rec,
	)

	res, err := eng.Cycle(context.Background(), types.Account{ID: "acct-1"}, "BTC/USDT")

	require.NoError(t, err)
	require.Equal(t, types.SignalNeutral, res.Decision.Signal)
	assert.Equal(t, types.OrderPending, res.Outcome.Status)
	assert.Equal(t, types.ReasonNeutralSignal, res.Outcome.Reason)
	assert.Zero(t, res.Decision.PositionSize)

	// Neutral cycles skip the balance query entirely.
	assert.Zero(t, exec.balanceCalls)
	assert.Zero(t, exec.submits)
	assert.Zero(t, exec.conditionals)

	// The decision and its pending outcome are still recorded.
	require.Len(t, rec.decisions, 1)
	require.Len(t, rec.outcomes, 1)
}

func TestCycleBalanceFailureProducesFailedOutcome(t *testing.T) {
	exec := &spyExec{balanceErr: fmt.Errorf("venue: %w", types.ErrNetwork)}
	rec := &memRecorder{}
	eng := New(testConfig(),
		&fakeFeed{closes: risingCloses(40)},
		&fakeProvider{exec: exec},
		stubNarrator{},
		rec,
	)

	res, err := eng.Cycle(context.Background(), types.Account{ID: "acct-1"}, "BTC/USDT")

	require.NoError(t, err, "a balance failure ends the cycle gracefully")
	require.NotNil(t, res)
	assert.Equal(t, types.OrderFailed, res.Outcome.Status)
	assert.Equal(t, types.ReasonBalanceQuery, res.Outcome.Reason)
	assert.Zero(t, exec.submits, "no order without a confirmed balance")

	require.Len(t, rec.outcomes, 1)
	assert.Equal(t, types.ReasonBalanceQuery, rec.outcomes[0].Reason)
}

func TestCycleFeedFailureReturnsDataUnavailable(t *testing.T) {
	eng := New(testConfig(),
		&fakeFeed{err: errors.New("connection refused")},
		&fakeProvider{exec: &spyExec{balance: 10000}},
		stubNarrator{},
		&memRecorder{},
	)

	_, err := eng.Cycle(context.Background(), types.Account{ID: "acct-1"}, "BTC/USDT")

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDataUnavailable)
}

func TestCycleEmptySeriesReturnsDataUnavailable(t *testing.T) {
	eng := New(testConfig(),
		&fakeFeed{},
		&fakeProvider{exec: &spyExec{balance: 10000}},
		stubNarrator{},
		&memRecorder{},
	)

	_, err := eng.Cycle(context.Background(), types.Account{ID: "acct-1"}, "BTC/USDT")

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDataUnavailable)
}

func TestCycleRepeatOnSameCandleSubmitsOnce(t *testing.T) {
	exec := &spyExec{balance: 10000}
	eng := New(testConfig(),
		&fakeFeed{closes: risingCloses(40)},
		&fakeProvider{exec: exec},
		stubNarrator{},
		&memRecorder{},
	)

	account := types.Account{ID: "acct-1"}
	first, err := eng.Cycle(context.Background(), account, "BTC/USDT")
	require.NoError(t, err)
	second, err := eng.Cycle(context.Background(), account, "BTC/USDT")
	require.NoError(t, err)

	assert.Equal(t, 1, exec.submits, "the same candle timestamp must not resubmit")
	assert.Equal(t, first.Outcome, second.Outcome)
}

func TestCycleNilNarrator(t *testing.T) {
	exec := &spyExec{balance: 10000}
	eng := New(testConfig(),
		&fakeFeed{closes: risingCloses(40)},
		&fakeProvider{exec: exec},
		nil,
		&memRecorder{},
	)

	res, err := eng.Cycle(context.Background(), types.Account{ID: "acct-1"}, "BTC/USDT")

	require.NoError(t, err)
	assert.Empty(t, res.Narrative)
}
