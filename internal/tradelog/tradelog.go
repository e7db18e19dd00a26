// Package tradelog is the append-only trade-log sink: JSON lines in
// daily files, decisions and order outcomes in separate streams.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/types"
)

type DecisionEntry struct {
	Time       string                  `json:"time"`
	Account    string                  `json:"account"`
	Symbol     string                  `json:"symbol"`
	Signal     string                  `json:"signal"`
	Confidence float64                 `json:"confidence"`
	Price      float64                 `json:"price"`
	Size       float64                 `json:"size"`
	Reason     string                  `json:"reason"`
	Indicators types.IndicatorSnapshot `json:"indicators"`
}

type OutcomeEntry struct {
	Time       string  `json:"time"`
	Account    string  `json:"account"`
	Symbol     string  `json:"symbol"`
	Status     string  `json:"status"`
	Side       string  `json:"side,omitempty"`
	Amount     float64 `json:"amount"`
	FillPrice  float64 `json:"fill_price,omitempty"`
	OrderID    string  `json:"order_id,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Error      string  `json:"error,omitempty"`
	Simulated  bool    `json:"simulated,omitempty"`
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
}

// Log writes one JSON line per record under its directory. Writes are
// mutex-guarded; files roll daily in UTC.
type Log struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

var _ interfaces.Recorder = (*Log)(nil)

func New(dir string) *Log {
	if dir == "" {
		dir = defaultDir()
	}
	return &Log{dir: dir, now: func() time.Time { return time.Now().UTC() }}
}

func defaultDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func (l *Log) outcomesPath(t time.Time) string {
	return filepath.Join(l.dir, t.Format("2006-01-02")+".txt")
}

func (l *Log) decisionsPath(t time.Time) string {
	return filepath.Join(l.dir, "decisions", t.Format("2006-01-02")+".txt")
}

func (l *Log) RecordDecision(account, symbol string, d types.TradeDecision) error {
	now := l.now()
	return l.append(l.decisionsPath(now), DecisionEntry{
		Time:       now.Format("2006-01-02 15:04:05"),
		Account:    account,
		Symbol:     symbol,
		Signal:     string(d.Signal),
		Confidence: d.Confidence,
		Price:      d.EntryPrice,
		Size:       d.PositionSize,
		Reason:     d.Reasoning,
		Indicators: d.Indicators,
	})
}

func (l *Log) RecordOutcome(account, symbol string, d types.TradeDecision, o types.OrderOutcome) error {
	now := l.now()
	return l.append(l.outcomesPath(now), OutcomeEntry{
		Time:       now.Format("2006-01-02 15:04:05"),
		Account:    account,
		Symbol:     symbol,
		Status:     string(o.Status),
		Side:       o.Side,
		Amount:     o.Amount,
		FillPrice:  o.FillPrice,
		OrderID:    o.OrderID,
		Reason:     o.Reason,
		Error:      o.Error,
		Simulated:  o.Simulated,
		Signal:     string(d.Signal),
		Confidence: d.Confidence,
	})
}

func (l *Log) append(path string, entry any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(entry)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips plain-text log files older than retentionDays.
func (l *Log) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(l.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
