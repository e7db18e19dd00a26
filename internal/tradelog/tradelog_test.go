package tradelog

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nexus-trading-bot/internal/types"
)

func fixedLog(t *testing.T, ts time.Time) *Log {
	t.Helper()
	l := New(t.TempDir())
	l.now = func() time.Time { return ts }
	return l
}

func TestRecordDecisionWritesJSONLine(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	l := fixedLog(t, ts)

	d := types.TradeDecision{
		Signal:     types.SignalBuy,
		Confidence: 0.62,
		EntryPrice: 139,
		Reasoning:  "BUY: evidence",
	}
	if err := l.RecordDecision("acct-1", "BTC/USDT", d); err != nil {
		t.Fatalf("RecordDecision() = %v", err)
	}

	b, err := os.ReadFile(filepath.Join(l.dir, "decisions", "2026-03-01.txt"))
	if err != nil {
		t.Fatalf("reading decisions file: %v", err)
	}
	var e DecisionEntry
	if err := json.Unmarshal(b[:len(b)-1], &e); err != nil {
		t.Fatalf("decisions line is not valid JSON: %v", err)
	}
	if e.Account != "acct-1" || e.Symbol != "BTC/USDT" || e.Signal != "BUY" {
		t.Errorf("entry = %+v, want recorded decision fields", e)
	}
	if e.Time != "2026-03-01 10:30:00" {
		t.Errorf("Time = %q, want formatted timestamp", e.Time)
	}
}

func TestRecordOutcomeAppends(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	l := fixedLog(t, ts)

	d := types.TradeDecision{Signal: types.SignalBuy, Confidence: 0.6}
	for i := 0; i < 3; i++ {
		o := types.OrderOutcome{Status: types.OrderSuccess, Side: "BUY", Amount: 0.5, FillPrice: 100, OrderID: "ord"}
		if err := l.RecordOutcome("acct-1", "BTC/USDT", d, o); err != nil {
			t.Fatalf("RecordOutcome() = %v", err)
		}
	}

	f, err := os.Open(l.outcomesPath(ts))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e OutcomeEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		lines++
	}
	if lines != 3 {
		t.Errorf("outcome file has %d lines, want 3", lines)
	}
}

func TestSummarizeDay(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	l := fixedLog(t, ts)

	d := types.TradeDecision{Signal: types.SignalBuy}
	record := func(symbol, side string, status types.OrderStatus, amount, fill float64) {
		t.Helper()
		o := types.OrderOutcome{Status: status, Side: side, Amount: amount, FillPrice: fill}
		if err := l.RecordOutcome("acct-1", symbol, d, o); err != nil {
			t.Fatal(err)
		}
	}
	record("BTC/USDT", "BUY", types.OrderSuccess, 0.5, 100)
	record("BTC/USDT", "BUY", types.OrderSuccess, 0.25, 104)
	record("BTC/USDT", "SELL", types.OrderSuccess, 0.1, 110)
	record("BTC/USDT", "BUY", types.OrderFailed, 0.5, 0)
	record("ETH/USDT", "SELL", types.OrderSuccess, 2, 50)

	path, err := l.SummarizeDay(ts)
	if err != nil {
		t.Fatalf("SummarizeDay() = %v", err)
	}
	if path == "" {
		t.Fatal("SummarizeDay() wrote nothing")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header plus one row per symbol, sorted.
	if len(rows) != 3 {
		t.Fatalf("summary has %d rows, want 3", len(rows))
	}
	if rows[1][0] != "BTC/USDT" || rows[2][0] != "ETH/USDT" {
		t.Errorf("symbols = %q, %q, want sorted BTC/USDT then ETH/USDT", rows[1][0], rows[2][0])
	}

	btc := rows[1]
	if btc[1] != "2" {
		t.Errorf("buy_count = %s, want 2", btc[1])
	}
	if btc[2] != "0.750000" {
		t.Errorf("buy_amount = %s, want 0.750000", btc[2])
	}
	if btc[3] != "76.00" {
		t.Errorf("buy_value = %s, want 76.00", btc[3])
	}
	if btc[4] != "1" {
		t.Errorf("sell_count = %s, want 1", btc[4])
	}
	if btc[7] != "1" {
		t.Errorf("failed = %s, want 1", btc[7])
	}
}

func TestSummarizeDayNothingRecorded(t *testing.T) {
	l := fixedLog(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	path, err := l.SummarizeDay(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SummarizeDay() = %v", err)
	}
	if path != "" {
		t.Errorf("SummarizeDay() = %q, want empty path with no records", path)
	}
}

func TestCompressOlder(t *testing.T) {
	l := New(t.TempDir())

	old := filepath.Join(l.dir, "2026-01-01.txt")
	if err := os.WriteFile(old, []byte(`{"status":"SUCCESS"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(l.dir, "2026-03-01.txt")
	if err := os.WriteFile(fresh, []byte(`{"status":"SUCCESS"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := l.CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder() = %v", err)
	}

	if _, err := os.Stat(old + ".gz"); err != nil {
		t.Errorf("expected %s.gz to exist: %v", old, err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("expected old plain file to be removed, stat err = %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh file must be untouched: %v", err)
	}
}
