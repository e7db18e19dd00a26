package paper

import (
	"context"
	"testing"
)

func TestSubmitMarketOrderIsSimulated(t *testing.T) {
	p := New(10000)
	ack, err := p.SubmitMarketOrder(context.Background(), "BTC/USDT", "BUY", 0.5)
	if err != nil {
		t.Fatalf("SubmitMarketOrder() = %v", err)
	}
	if ack.Status != "SIMULATED" {
		t.Errorf("Status = %q, want SIMULATED", ack.Status)
	}
	if len(ack.OrderID) != 8 {
		t.Errorf("OrderID = %q, want 8-character identifier", ack.OrderID)
	}
}

func TestOrderIDsAreUnique(t *testing.T) {
	p := New(10000)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ack, err := p.SubmitMarketOrder(context.Background(), "BTC/USDT", "BUY", 0.5)
		if err != nil {
			t.Fatal(err)
		}
		if seen[ack.OrderID] {
			t.Fatalf("duplicate simulated order id %q", ack.OrderID)
		}
		seen[ack.OrderID] = true
	}
}

func TestBalanceIsFixed(t *testing.T) {
	p := New(2500)
	for i := 0; i < 3; i++ {
		got, err := p.Balance(context.Background(), "USDT")
		if err != nil {
			t.Fatal(err)
		}
		if got != 2500 {
			t.Errorf("Balance() = %v, want 2500", got)
		}
	}
}
