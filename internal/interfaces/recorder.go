package interfaces

import "nexus-trading-bot/internal/types"

// Recorder is the append-only trade-log sink. Recording failures are
// logged by callers, never surfaced into the cycle result.
type Recorder interface {
	RecordDecision(account, symbol string, d types.TradeDecision) error
	RecordOutcome(account, symbol string, d types.TradeDecision, o types.OrderOutcome) error
}
