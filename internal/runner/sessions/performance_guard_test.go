package sessions

import (
	"testing"
	"time"

	"gap_bot/internal/models"
)

func recordsWithProfits(profits ...float64) []*models.TradeRecord {
	out := make([]*models.TradeRecord, 0, len(profits))
	for _, p := range profits {
		out = append(out, &models.TradeRecord{NetProfit: p})
	}
	return out
}

func TestPerformanceGuardEvaluate(t *testing.T) {
	g := PerformanceGuard{MinProfitFactor: 1, MinAverageTrade: 0}

	tests := []struct {
		name    string
		profits []float64
		wantPF  float64
		wantAvg float64
	}{
		{"mixed", []float64{30, -10, -10}, 1.5, 10.0 / 3.0},
		{"all losses", []float64{-10, -20}, 0, -15},
		{"no losses gets sentinel", []float64{10, 20}, profitFactorExcellent, 15},
		{"empty", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf, avg := g.Evaluate(recordsWithProfits(tt.profits...))
			if pf != tt.wantPF || avg != tt.wantAvg {
				t.Errorf("Evaluate = (%v, %v), want (%v, %v)", pf, avg, tt.wantPF, tt.wantAvg)
			}
		})
	}
}

// Остановка только когда ПЛОХИ обе метрики; одна плохая — торгуем дальше.
func TestPerformanceGuardShouldSuspend(t *testing.T) {
	g := PerformanceGuard{MinProfitFactor: 1.2, MinAverageTrade: 5}

	tests := []struct {
		name    string
		profits []float64
		want    bool
	}{
		{"no trades never suspends", nil, false},
		{"both metrics below", []float64{-10, -10, 5}, true},
		{"good pf saves bad average", []float64{60, -50, 1}, false},
		{"good average saves bad pf", []float64{100, -90, 5}, false},
		{"both metrics fine", []float64{30, 20, -10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ShouldSuspend(recordsWithProfits(tt.profits...)); got != tt.want {
				t.Errorf("ShouldSuspend = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPerformanceCheckpoint(t *testing.T) {
	tests := []struct {
		month time.Month
		want  bool
	}{
		{time.January, false},
		{time.March, false},
		{time.April, true},
		{time.December, true},
	}

	for _, tt := range tests {
		now := time.Date(2026, tt.month, 15, 10, 0, 0, 0, time.UTC)
		if got := performanceCheckpoint(now); got != tt.want {
			t.Errorf("performanceCheckpoint(%v) = %v, want %v", tt.month, got, tt.want)
		}
	}
}
