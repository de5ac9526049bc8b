package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newLedger() *Ledger {
	return New([]string{"A", "B", "C"}, 30, decimal.NewFromFloat(0.9))
}

func TestSettle_OnlyOnFinalDay(t *testing.T) {
	l := newLedger()
	if l.FinalDay() != 30 {
		t.Fatalf("final day %d, want 30", l.FinalDay())
	}
	l.Record("C", 3, decimal.NewFromInt(40))

	for day := 0; day <= 35; day++ {
		got := l.Settle(day)
		if day == 30 {
			if got == nil {
				t.Fatal("final day settlement returned nil")
			}
			continue
		}
		if got != nil {
			t.Errorf("day %d settled: %v", day, got)
		}
	}
}

func TestSettle_PenaltyIsNinetyPercent(t *testing.T) {
	l := newLedger()
	l.Record("B", 4, decimal.NewFromInt(40))
	l.Record("C", 2, decimal.NewFromInt(80))
	l.Record("C", 5, decimal.NewFromInt(40))
	l.Record("C", 9, decimal.NewFromInt(120))

	p := l.Settle(30)
	if len(p) != 3 {
		t.Fatalf("got %d penalties, want 3", len(p))
	}

	tests := []struct {
		id      string
		damage  int64
		penalty string
		days    int
	}{
		{"A", 0, "0", 0},
		{"B", 40, "36", 1},
		{"C", 240, "216", 3},
	}
	for _, tt := range tests {
		got := p[tt.id]
		if !got.TotalDamage.Equal(decimal.NewFromInt(tt.damage)) {
			t.Errorf("%s total damage %s, want %d", tt.id, got.TotalDamage, tt.damage)
		}
		if !got.PenaltyAmount.Equal(decimal.RequireFromString(tt.penalty)) {
			t.Errorf("%s penalty %s, want %s", tt.id, got.PenaltyAmount, tt.penalty)
		}
		if !got.PenaltyAmount.Equal(got.TotalDamage.Mul(decimal.RequireFromString("0.9"))) {
			t.Errorf("%s penalty is not exactly 0.9 x damage", tt.id)
		}
		if got.DamageDays != tt.days {
			t.Errorf("%s damage days %d, want %d", tt.id, got.DamageDays, tt.days)
		}
	}
}

func TestRecord_TotalsNeverDecrease(t *testing.T) {
	l := newLedger()
	prev := l.Total("A")
	for day, amt := range []int64{40, 0, 80, -10, 40} {
		l.Record("A", day+1, decimal.NewFromInt(amt))
		cur := l.Total("A")
		if cur.LessThan(prev) {
			t.Fatalf("total decreased from %s to %s", prev, cur)
		}
		prev = cur
	}
	if !prev.Equal(decimal.NewFromInt(160)) {
		t.Errorf("total %s, want 160", prev)
	}
	if len(l.Records("A")) != 4 {
		t.Errorf("records %d, want 4 (negative ignored)", len(l.Records("A")))
	}
	if !l.Total("unknown").IsZero() {
		t.Error("unknown company should have zero damage")
	}
}
