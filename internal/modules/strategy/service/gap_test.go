package service

import (
	"math"
	"testing"

	"gap_bot/internal/models"
)

func TestIdentifyGap(t *testing.T) {
	tests := []struct {
		name       string
		high, low  float64
		ema        float64
		want       models.GapType
		determined bool
	}{
		{"low above ema is gap up", 103, 101, 100, models.GapUp, true},
		{"high below ema is gap down", 99, 97, 100, models.GapDown, true},
		{"ema inside bar is no gap", 103, 99, 100, models.GapNone, true},
		{"low touching ema is no gap", 103, 100, 100, models.GapNone, true},
		{"high touching ema is no gap", 100, 97, 100, models.GapNone, true},
		{"undefined ema defers", 103, 101, math.NaN(), models.GapNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, determined := IdentifyGap(tt.high, tt.low, tt.ema)
			if got != tt.want || determined != tt.determined {
				t.Errorf("IdentifyGap(%v, %v, %v) = (%v, %v), want (%v, %v)",
					tt.high, tt.low, tt.ema, got, determined, tt.want, tt.determined)
			}
		})
	}
}

func TestSessionEMAWarmup(t *testing.T) {
	ema := NewSessionEMA(3)

	if _, defined := ema.Value(); defined {
		t.Fatal("fresh EMA must be undefined")
	}

	ema.Update(100)
	ema.Update(100)
	if _, defined := ema.Value(); defined {
		t.Fatal("EMA defined before warmup completed")
	}

	ema.Update(100)
	v, defined := ema.Value()
	if !defined {
		t.Fatal("EMA undefined after warmup")
	}
	if v != 100 {
		t.Errorf("EMA of constant series = %v, want 100", v)
	}
}
