package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-trading-bot/internal/types"
)

// spyExec records every call so tests can assert exactly what reached
// the venue.
type spyExec struct {
	mu             sync.Mutex
	submits        int
	conditionals   int
	balanceCalls   int
	lastSide       string
	lastAmount     float64
	triggers       []float64
	balance        float64
	balanceErr     error
	submitErr      error
	conditionalErr error
	ack            types.OrderAck
}

func (s *spyExec) SubmitMarketOrder(ctx context.Context, symbol, side string, amount float64) (types.OrderAck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits++
	s.lastSide = side
	s.lastAmount = amount
	if s.submitErr != nil {
		return types.OrderAck{}, s.submitErr
	}
	ack := s.ack
	if ack.OrderID == "" {
		ack.OrderID = fmt.Sprintf("ord-%d", s.submits)
	}
	return ack, nil
}

func (s *spyExec) PlaceConditionalOrder(ctx context.Context, symbol, side string, amount, triggerPrice float64) (types.OrderAck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conditionals++
	s.triggers = append(s.triggers, triggerPrice)
	if s.conditionalErr != nil {
		return types.OrderAck{}, s.conditionalErr
	}
	return types.OrderAck{OrderID: fmt.Sprintf("cond-%d", s.conditionals)}, nil
}

func (s *spyExec) Balance(ctx context.Context, currency string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balanceCalls++
	if s.balanceErr != nil {
		return 0, s.balanceErr
	}
	return s.balance, nil
}

func buyDecision() types.TradeDecision {
	return types.TradeDecision{
		Signal:       types.SignalBuy,
		Confidence:   0.6,
		EntryPrice:   100,
		StopLoss:     98,
		TakeProfit:   104,
		PositionSize: 0.5,
	}
}

func TestGatewayNeutralStaysPending(t *testing.T) {
	g := NewGateway()
	exec := &spyExec{}

	out := g.Execute(context.Background(), ExecuteRequest{
		CycleID:  "a|BTC/USDT|1",
		Decision: types.TradeDecision{Signal: types.SignalNeutral},
	}, exec)

	assert.Equal(t, types.OrderPending, out.Status)
	assert.Equal(t, types.ReasonNeutralSignal, out.Reason)
	assert.Zero(t, exec.submits)
	assert.Zero(t, exec.conditionals)
}

func TestGatewayZeroSizeReportsSkipReason(t *testing.T) {
	g := NewGateway()
	exec := &spyExec{}

	out := g.Execute(context.Background(), ExecuteRequest{
		CycleID:    "a|BTC/USDT|1",
		Decision:   types.TradeDecision{Signal: types.SignalBuy},
		SkipReason: types.ReasonRiskCeiling,
	}, exec)

	assert.Equal(t, types.OrderPending, out.Status)
	assert.Equal(t, types.ReasonRiskCeiling, out.Reason)
	assert.Zero(t, exec.submits)
}

func TestGatewayZeroSizeDefaultReason(t *testing.T) {
	g := NewGateway()
	out := g.Execute(context.Background(), ExecuteRequest{
		CycleID:  "a|BTC/USDT|1",
		Decision: types.TradeDecision{Signal: types.SignalSell},
	}, &spyExec{})
	assert.Equal(t, types.ReasonZeroSize, out.Reason)
}

func TestGatewaySuccessPlacesProtectiveOrders(t *testing.T) {
	g := NewGateway()
	exec := &spyExec{ack: types.OrderAck{OrderID: "abc123", Status: "FILLED", FillPrice: 99.8}}

	out := g.Execute(context.Background(), ExecuteRequest{
		CycleID:  "a|BTC/USDT|1",
		Account:  "a",
		Symbol:   "BTC/USDT",
		Decision: buyDecision(),
	}, exec)

	require.Equal(t, types.OrderSuccess, out.Status)
	assert.Equal(t, "abc123", out.OrderID)
	assert.Equal(t, "BUY", out.Side)
	assert.Equal(t, 0.5, out.Amount)
	assert.Equal(t, 99.8, out.FillPrice)
	assert.False(t, out.Simulated)

	assert.Equal(t, 1, exec.submits)
	assert.Equal(t, 2, exec.conditionals)
	assert.ElementsMatch(t, []float64{98, 104}, exec.triggers)
}

func TestGatewayFillPriceDefaultsToEntry(t *testing.T) {
	g := NewGateway()
	exec := &spyExec{ack: types.OrderAck{OrderID: "abc123", Status: "FILLED"}}

	out := g.Execute(context.Background(), ExecuteRequest{
		CycleID:  "a|BTC/USDT|1",
		Decision: buyDecision(),
	}, exec)

	require.Equal(t, types.OrderSuccess, out.Status)
	assert.Equal(t, 100.0, out.FillPrice)
}

func TestGatewaySimulatedAckMarksOutcome(t *testing.T) {
	g := NewGateway()
	exec := &spyExec{ack: types.OrderAck{OrderID: "sim1", Status: "SIMULATED"}}

	out := g.Execute(context.Background(), ExecuteRequest{
		CycleID:  "a|BTC/USDT|1",
		Decision: buyDecision(),
	}, exec)

	require.Equal(t, types.OrderSuccess, out.Status)
	assert.True(t, out.Simulated)
}

func TestGatewayClassifiesVenueFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason string
	}{
		{"insufficient funds", fmt.Errorf("venue: %w", types.ErrInsufficientFunds), types.ReasonInsufficientFunds},
		{"authentication", fmt.Errorf("venue: %w", types.ErrAuthentication), types.ReasonAuthError},
		{"network", fmt.Errorf("venue: %w", types.ErrNetwork), types.ReasonNetworkError},
		{"plain rejection", fmt.Errorf("order rejected"), types.ReasonRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway()
			exec := &spyExec{submitErr: tt.err}

			out := g.Execute(context.Background(), ExecuteRequest{
				CycleID:  "a|BTC/USDT|1",
				Decision: buyDecision(),
			}, exec)

			assert.Equal(t, types.OrderFailed, out.Status)
			assert.Equal(t, tt.wantReason, out.Reason)
			assert.Equal(t, tt.err.Error(), out.Error)
			assert.Zero(t, exec.conditionals, "no protective orders after a failed entry")
		})
	}
}

func TestGatewayProtectiveFailureDoesNotFailEntry(t *testing.T) {
	g := NewGateway()
	exec := &spyExec{conditionalErr: fmt.Errorf("venue: %w", types.ErrNetwork)}

	out := g.Execute(context.Background(), ExecuteRequest{
		CycleID:  "a|BTC/USDT|1",
		Decision: buyDecision(),
	}, exec)

	assert.Equal(t, types.OrderSuccess, out.Status)
	assert.Equal(t, 2, exec.conditionals)
}

func TestGatewayIdempotentPerCycleID(t *testing.T) {
	g := NewGateway()
	exec := &spyExec{}
	req := ExecuteRequest{CycleID: "a|BTC/USDT|1", Decision: buyDecision()}

	first := g.Execute(context.Background(), req, exec)
	second := g.Execute(context.Background(), req, exec)

	assert.Equal(t, 1, exec.submits, "duplicate cycle must not resubmit")
	assert.Equal(t, first, second, "duplicate cycle returns the cached outcome")

	other := req
	other.CycleID = "a|BTC/USDT|2"
	g.Execute(context.Background(), other, exec)
	assert.Equal(t, 2, exec.submits, "a new cycle identifier submits again")
}

func TestGatewayIdempotentUnderConcurrentRetries(t *testing.T) {
	g := NewGateway()
	exec := &spyExec{}
	req := ExecuteRequest{CycleID: "a|BTC/USDT|1", Decision: buyDecision()}

	const retries = 16
	outcomes := make([]types.OrderOutcome, retries)
	var wg sync.WaitGroup
	for i := 0; i < retries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = g.Execute(context.Background(), req, exec)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, exec.submits)
	for i := 1; i < retries; i++ {
		assert.Equal(t, outcomes[0], outcomes[i])
	}
}
