package company

import (
	"testing"

	"github.com/talgya/task-market/internal/config"
)

func profile(trigger, price int) config.CompanyProfile {
	return config.CompanyProfile{ID: "T", Price: price, Profit: 1, DefectTrigger: trigger}
}

func TestGenerateDefects_ExactBoundaryFromAnyCounter(t *testing.T) {
	for _, trigger := range []int{1, 10, 50, 100} {
		for c := 0; c < trigger; c++ {
			s := NewState(profile(trigger, 1))
			s.DefectCounter = c

			if got := s.GenerateDefects(trigger - c); got != 1 {
				t.Fatalf("trigger=%d counter=%d: got %d defects, want 1", trigger, c, got)
			}
			if s.DefectCounter != 0 {
				t.Fatalf("trigger=%d counter=%d: counter=%d after boundary, want 0", trigger, c, s.DefectCounter)
			}
		}
	}
}

func TestGenerateDefects_MultiplesFromZero(t *testing.T) {
	for _, trigger := range []int{1, 7, 10, 100} {
		for k := 0; k <= 5; k++ {
			s := NewState(profile(trigger, 1))
			if got := s.GenerateDefects(k * trigger); got != k {
				t.Errorf("trigger=%d k=%d: got %d defects", trigger, k, got)
			}
			if s.DefectCounter != 0 {
				t.Errorf("trigger=%d k=%d: counter=%d", trigger, k, s.DefectCounter)
			}
		}
	}
}

func TestGenerateDefects_MatchesClosedForm(t *testing.T) {
	s := NewState(profile(10, 1))
	counter := 0
	total := 0
	for _, n := range []int{3, 0, 7, 15, 1, 29, 40, 2} {
		want := (counter + n) / 10
		got := s.GenerateDefects(n)
		if got != want {
			t.Fatalf("produce %d from counter %d: got %d, want %d", n, counter, got, want)
		}
		counter = (counter + n) % 10
		total += got
		if s.DefectCounter != counter {
			t.Fatalf("counter=%d, want %d", s.DefectCounter, counter)
		}
		if s.DefectCounter < 0 {
			t.Fatal("negative counter")
		}
	}

	if s.TotalDefects != total {
		t.Errorf("TotalDefects=%d, want %d", s.TotalDefects, total)
	}
	if len(s.DefectHistory) != 8 {
		t.Fatalf("history length %d, want 8", len(s.DefectHistory))
	}
	for i, rec := range s.DefectHistory {
		if rec.Seq != i+1 {
			t.Errorf("record %d has seq %d", i, rec.Seq)
		}
	}
}

func TestUnit_ProduceTruncatesToCapacity(t *testing.T) {
	s := NewState(profile(10, 5))
	u := NewUnit(s, LossConfig{LostSalesPerDefect: 10, AvgProfitPerTask: 4})
	u.SetCapacity(25)

	good, defects := u.Produce(40)
	if u.AssignedTasks != 25 || u.ActualProduction != 25 {
		t.Fatalf("assigned=%d production=%d, want 25", u.AssignedTasks, u.ActualProduction)
	}
	if defects != 2 || good != 23 {
		t.Errorf("good=%d defects=%d, want 23/2", good, defects)
	}
	if s.TotalProduction != 25 || s.TotalIncome != 125 || s.TotalDefects != 2 {
		t.Errorf("lifetime totals production=%d income=%d defects=%d",
			s.TotalProduction, s.TotalIncome, s.TotalDefects)
	}

	u.SetCapacity(30)
	if u.AssignedTasks != 0 || u.DefectsProduced != 0 {
		t.Error("SetCapacity did not clear the day's production")
	}
	good, defects = u.Produce(5)
	if good+defects != 5 || defects != 1 {
		t.Errorf("second day good=%d defects=%d, want 4/1", good, defects)
	}
	if s.TotalProduction != 30 {
		t.Errorf("TotalProduction=%d, want 30", s.TotalProduction)
	}
}

func TestUnit_DailyLoss(t *testing.T) {
	u := NewUnit(NewState(profile(10, 5)), LossConfig{LostSalesPerDefect: 10, AvgProfitPerTask: 4})

	tests := []struct {
		defects int
		want    int
	}{
		{0, 0},
		{1, 40},
		{3, 120},
	}
	for _, tt := range tests {
		if got := u.DailyLoss(tt.defects); got != tt.want {
			t.Errorf("DailyLoss(%d)=%d, want %d", tt.defects, got, tt.want)
		}
	}
}

func TestState_DefectPercent(t *testing.T) {
	s := NewState(profile(10, 1))
	if s.DefectPercent() != 0 {
		t.Error("expected 0 with no production")
	}
	s.TotalProduction = 200
	s.TotalDefects = 20
	if s.DefectPercent() != 10 {
		t.Errorf("DefectPercent=%v, want 10", s.DefectPercent())
	}
}
