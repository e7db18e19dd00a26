package engine

import (
	"context"
	"sync"
	"time"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/logger"
	"nexus-trading-bot/internal/types"
)

// cacheTTL bounds how long submitted cycle identifiers are remembered.
// One day comfortably covers any realistic polling interval.
const cacheTTL = 24 * time.Hour

// ExecuteRequest carries one decision into the gateway. CycleID is the
// account+symbol+timestamp identifier used for idempotency; SkipReason,
// when non-empty, records why sizing already ruled the order out.
type ExecuteRequest struct {
	CycleID    string
	Account    string
	Symbol     string
	Decision   types.TradeDecision
	SkipReason string
}

type inflight struct {
	done    chan struct{}
	at      time.Time
	outcome types.OrderOutcome
}

// Gateway is the execution boundary. Per decision it runs the state
// machine PENDING -> SUBMITTED -> {SUCCESS, FAILED}: a decision only
// reaches SUBMITTED when the signal is directional and the size is
// positive, and each cycle identifier submits at most one live order
// even when the calling cycle is retried.
type Gateway struct {
	mu        sync.Mutex
	submitted map[string]*inflight
}

func NewGateway() *Gateway {
	return &Gateway{submitted: map[string]*inflight{}}
}

// Execute drives one decision through the state machine and returns its
// outcome. Venue errors are captured into the outcome, never returned:
// nothing propagates past the gateway boundary.
func (g *Gateway) Execute(ctx context.Context, req ExecuteRequest, exec interfaces.Execution) types.OrderOutcome {
	d := req.Decision

	// Terminal PENDING is the common, expected outcome, not an error.
	if d.Signal == types.SignalNeutral {
		return types.OrderOutcome{Status: types.OrderPending, Reason: types.ReasonNeutralSignal}
	}
	if d.PositionSize <= 0 {
		reason := req.SkipReason
		if reason == "" {
			reason = types.ReasonZeroSize
		}
		return types.OrderOutcome{Status: types.OrderPending, Reason: reason}
	}

	g.mu.Lock()
	g.evictLocked()
	if e, ok := g.submitted[req.CycleID]; ok {
		g.mu.Unlock()
		<-e.done
		logger.Debug(ctx, "Duplicate cycle submission ignored", "cycle_id", req.CycleID)
		return e.outcome
	}
	e := &inflight{done: make(chan struct{}), at: time.Now()}
	g.submitted[req.CycleID] = e
	g.mu.Unlock()

	e.outcome = g.submit(ctx, req, exec)
	close(e.done)
	return e.outcome
}

func (g *Gateway) submit(ctx context.Context, req ExecuteRequest, exec interfaces.Execution) types.OrderOutcome {
	d := req.Decision
	side := d.Signal.Side()

	ack, err := exec.SubmitMarketOrder(ctx, req.Symbol, side, d.PositionSize)
	if err != nil {
		logger.ErrorWithErr(ctx, "Order submission failed", err,
			"account", req.Account,
			"symbol", req.Symbol,
			"side", side,
			"amount", d.PositionSize,
		)
		return types.OrderOutcome{
			Status: types.OrderFailed,
			Side:   side,
			Amount: d.PositionSize,
			Reason: types.ReasonFor(err),
			Error:  err.Error(),
		}
	}

	out := types.OrderOutcome{
		Status:    types.OrderSuccess,
		OrderID:   ack.OrderID,
		Side:      side,
		Amount:    d.PositionSize,
		FillPrice: ack.FillPrice,
		Simulated: ack.Status == "SIMULATED",
	}
	if out.FillPrice == 0 {
		out.FillPrice = d.EntryPrice
	}

	// Protective orders are best-effort follow-ups: a failure here is a
	// warning, the primary fill stands.
	g.placeProtective(ctx, req, exec, side)

	return out
}

func (g *Gateway) placeProtective(ctx context.Context, req ExecuteRequest, exec interfaces.Execution, entrySide string) {
	d := req.Decision
	exitSide := "SELL"
	if entrySide == "SELL" {
		exitSide = "BUY"
	}

	if d.StopLoss > 0 {
		if _, err := exec.PlaceConditionalOrder(ctx, req.Symbol, exitSide, d.PositionSize, d.StopLoss); err != nil {
			logger.Warn(ctx, "Failed to place stop-loss order",
				"account", req.Account,
				"symbol", req.Symbol,
				"trigger_price", d.StopLoss,
				"error", err,
			)
		}
	}
	if d.TakeProfit > 0 {
		if _, err := exec.PlaceConditionalOrder(ctx, req.Symbol, exitSide, d.PositionSize, d.TakeProfit); err != nil {
			logger.Warn(ctx, "Failed to place take-profit order",
				"account", req.Account,
				"symbol", req.Symbol,
				"trigger_price", d.TakeProfit,
				"error", err,
			)
		}
	}
}

// evictLocked drops cycle identifiers older than the TTL. Callers hold mu.
func (g *Gateway) evictLocked() {
	cutoff := time.Now().Add(-cacheTTL)
	for id, e := range g.submitted {
		select {
		case <-e.done:
			if e.at.Before(cutoff) {
				delete(g.submitted, id)
			}
		default:
		}
	}
}
