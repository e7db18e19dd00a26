package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/logger"
	"nexus-trading-bot/internal/store"
	"nexus-trading-bot/internal/types"
)

// Engine runs the decision pipeline: fetch candles, compute indicators,
// classify, size, compose, execute. It owns no per-account state across
// cycles; the only memory is the gateway's cycle-ID idempotency cache.
type Engine struct {
	cfg        *store.Config
	feed       interfaces.PriceFeed
	provider   interfaces.ExecutionProvider
	narrator   interfaces.Narrator
	recorder   interfaces.Recorder
	gateway    *Gateway
	classifier *signalClassifier
	sizer      *riskSizer
}

func New(cfg *store.Config, feed interfaces.PriceFeed, provider interfaces.ExecutionProvider, narrator interfaces.Narrator, recorder interfaces.Recorder) *Engine {
	return &Engine{
		cfg:      cfg,
		feed:     feed,
		provider: provider,
		narrator: narrator,
		recorder: recorder,
		gateway:  NewGateway(),
		classifier: newSignalClassifier(
			cfg.Thresholds.RSIOversold,
			cfg.Thresholds.RSIOverbought,
			cfg.Thresholds.RSIStrongOversold,
			cfg.Thresholds.RSIStrongOverbought,
		),
		sizer: newRiskSizer(cfg.Risk.RiskPct, cfg.Risk.MaxRiskPct, cfg.Risk.MinOrderSize),
	}
}

var _ interfaces.Engine = (*Engine)(nil)

// Cycle evaluates the full pipeline once for one account/symbol pair.
// Missing credentials and neutral signals end the cycle early without
// touching the execution capability; venue failures are captured into
// the outcome rather than returned.
func (e *Engine) Cycle(ctx context.Context, account types.Account, symbol string) (*types.CycleResult, error) {
	exec, err := e.provider.ForAccount(ctx, account)
	if err != nil {
		if errors.Is(err, types.ErrCredentialsMissing) {
			logger.Warn(ctx, "Skipping account: no exchange credentials configured",
				"account", account.ID,
				"symbol", symbol,
			)
			return &types.CycleResult{
				Account: account.ID,
				Symbol:  symbol,
				Skipped: "CREDENTIALS_MISSING",
			}, nil
		}
		return nil, err
	}

	candles, err := e.feed.Candles(ctx, symbol, e.cfg.Timeframe, e.cfg.CandleLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrDataUnavailable, symbol, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s: empty series", types.ErrDataUnavailable, symbol)
	}

	snap := snapshotFrom(candles, e.cfg)
	latest := candles[len(candles)-1]
	logger.Debug(ctx, "Indicators computed",
		"symbol", symbol,
		"price", snap.Price,
		"rsi", snap.RSI,
		"macd", snap.MACD,
		"volatility_pct", snap.VolatilityPct,
		"trend", snap.Trend,
	)

	signal, confidence := e.classifier.classify(snap)

	var qty float64
	var skipReason string
	if signal == types.SignalNeutral {
		skipReason = types.ReasonNeutralSignal
	} else {
		balance, berr := exec.Balance(ctx, e.cfg.QuoteCurrency)
		if berr != nil {
			logger.ErrorWithErr(ctx, "Balance query failed", berr, "account", account.ID, "symbol", symbol)
			decision := composeDecision(signal, confidence, 0, snap, e.cfg.Risk.StopLossPct, e.cfg.Risk.TakeProfitPct)
			outcome := types.OrderOutcome{
				Status: types.OrderFailed,
				Reason: types.ReasonBalanceQuery,
				Error:  berr.Error(),
			}
			e.record(ctx, account.ID, symbol, decision, outcome)
			return &types.CycleResult{
				Account:  account.ID,
				Symbol:   symbol,
				Price:    snap.Price,
				Time:     latest.Ts,
				Decision: decision,
				Outcome:  outcome,
			}, nil
		}
		riskPct := e.sizer.adjustedRiskPct(signal, confidence)
		qty, skipReason = e.sizer.size(ctx, symbol, balance, snap.Price, riskPct, e.cfg.Risk.StopLossPct)
	}

	decision := composeDecision(signal, confidence, qty, snap, e.cfg.Risk.StopLossPct, e.cfg.Risk.TakeProfitPct)
	logger.Decision(ctx, account.ID, symbol, string(decision.Signal), decision.Confidence, decision.Reasoning)
	if rerr := e.recorder.RecordDecision(account.ID, symbol, decision); rerr != nil {
		logger.Warn(ctx, "Failed to record decision", "error", rerr)
	}

	outcome := e.gateway.Execute(ctx, ExecuteRequest{
		CycleID:    cycleID(account.ID, symbol, latest.Ts),
		Account:    account.ID,
		Symbol:     symbol,
		Decision:   decision,
		SkipReason: skipReason,
	}, exec)

	if outcome.Status != types.OrderPending {
		logger.Order(ctx, account.ID, symbol, outcome.Side, outcome.Amount, string(outcome.Status), outcome.OrderID)
	}
	e.record(ctx, account.ID, symbol, decision, outcome)

	return &types.CycleResult{
		Account:   account.ID,
		Symbol:    symbol,
		Price:     snap.Price,
		Time:      latest.Ts,
		Decision:  decision,
		Outcome:   outcome,
		Narrative: e.narrate(ctx, snap, candles),
	}, nil
}

func (e *Engine) record(ctx context.Context, account, symbol string, d types.TradeDecision, o types.OrderOutcome) {
	if err := e.recorder.RecordOutcome(account, symbol, d, o); err != nil {
		logger.Warn(ctx, "Failed to record outcome", "error", err)
	}
}

// narrate asks the optional narrator for commentary under its own
// timeout. A slow or absent narrator never blocks or fails a decision.
func (e *Engine) narrate(ctx context.Context, snap types.IndicatorSnapshot, candles []types.Candle) string {
	if e.narrator == nil {
		return ""
	}
	nctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.Narrative.TimeoutSeconds)*time.Second)
	defer cancel()
	return e.narrator.Explain(nctx, snap.Price, changePct(candles), snap.RSI)
}
