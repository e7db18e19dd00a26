package types

import "errors"

// Error taxonomy for the decision core. Indicator and classifier stages
// recover locally to neutral-safe defaults and never surface these;
// execution stages capture them into the OrderOutcome instead of
// propagating past the gateway boundary.
var (
	// ErrDataUnavailable: the price feed is unreachable or returned a
	// series shorter than the minimum lookback. The cycle is skipped.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrCredentialsMissing: the account has no stored exchange keys.
	// The cycle for that account is skipped with a log line only.
	ErrCredentialsMissing = errors.New("credentials missing")

	// ErrInsufficientFunds fails the specific order, not the cycle.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNetwork covers timeouts and transport failures on venue calls.
	ErrNetwork = errors.New("network error")

	// ErrAuthentication covers rejected or expired exchange keys.
	ErrAuthentication = errors.New("authentication error")

	// ErrConfigInvalid is fatal at startup, never per-cycle.
	ErrConfigInvalid = errors.New("invalid configuration")
)

// Reason codes recorded on OrderOutcome. Failures keep their distinct
// cause; they are never collapsed into a generic message.
const (
	ReasonNeutralSignal     = "NEUTRAL_SIGNAL"
	ReasonZeroSize          = "ZERO_POSITION_SIZE"
	ReasonRiskCeiling       = "MIN_SIZE_EXCEEDS_RISK_CEILING"
	ReasonInsufficientFunds = "INSUFFICIENT_FUNDS"
	ReasonNetworkError      = "NETWORK_ERROR"
	ReasonAuthError         = "AUTHENTICATION_ERROR"
	ReasonRejected          = "ORDER_REJECTED"
	ReasonBalanceQuery      = "BALANCE_QUERY_FAILED"
	ReasonDuplicateCycle    = "DUPLICATE_CYCLE"
)

// ReasonFor maps a venue error to its outcome reason code.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return ReasonInsufficientFunds
	case errors.Is(err, ErrAuthentication):
		return ReasonAuthError
	case errors.Is(err, ErrNetwork):
		return ReasonNetworkError
	default:
		return ReasonRejected
	}
}
