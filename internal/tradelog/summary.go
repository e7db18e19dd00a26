package tradelog

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

type summaryRow struct {
	Symbol    string
	BuyCount  int
	BuyAmount float64
	BuyValue  float64
	SellCount int
	SellAmt   float64
	SellValue float64
	Failed    int
}

// SummarizeDay aggregates the day's successful fills per symbol into a
// CSV under <dir>/summary. Returns the written path, or "" when there
// is nothing to summarize.
func (l *Log) SummarizeDay(t time.Time) (string, error) {
	inPath := l.outcomesPath(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	rows := map[string]*summaryRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e OutcomeEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		r := rows[e.Symbol]
		if r == nil {
			r = &summaryRow{Symbol: e.Symbol}
			rows[e.Symbol] = r
		}
		switch e.Status {
		case "SUCCESS":
			if e.Side == "BUY" {
				r.BuyCount++
				r.BuyAmount += e.Amount
				r.BuyValue += e.Amount * e.FillPrice
			} else {
				r.SellCount++
				r.SellAmt += e.Amount
				r.SellValue += e.Amount * e.FillPrice
			}
		case "FAILED":
			r.Failed++
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}

	symbols := make([]string, 0, len(rows))
	for s := range rows {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	outPath := filepath.Join(l.dir, "summary", t.Format("2006-01-02")+".csv")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"symbol", "buy_count", "buy_amount", "buy_value", "sell_count", "sell_amount", "sell_value", "failed"}); err != nil {
		return "", err
	}
	for _, s := range symbols {
		r := rows[s]
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.BuyCount),
			fmt.Sprintf("%.6f", r.BuyAmount),
			fmt.Sprintf("%.2f", r.BuyValue),
			strconv.Itoa(r.SellCount),
			fmt.Sprintf("%.6f", r.SellAmt),
			fmt.Sprintf("%.2f", r.SellValue),
			strconv.Itoa(r.Failed),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	return outPath, w.Error()
}
