package sessions

import "testing"

func TestCalcSizeByRisk(t *testing.T) {
	tests := []struct {
		name             string
		entry, sl        float64
		risk, pipValue   float64
		minSize, maxSize float64
		want             float64
	}{
		{"basic", 111, 101, 250, 1, 0.1, 100, 25},
		{"short direction", 92, 102, 250, 1, 0.1, 100, 25},
		{"degenerate stop returns min", 100, 100, 250, 1, 0.1, 100, 0.1},
		{"sub-epsilon distance returns min", 100, 100 + 1e-12, 250, 1, 0.1, 100, 0.1},
		{"zero pip value returns min", 111, 101, 250, 0, 0.1, 100, 0.1},
		{"rounds half away from zero", 100.25, 99.25, 0.25, 1, 0, 100, 0.3},
		{"rounds down", 111, 101, 252, 1, 0.1, 100, 25.2},
		{"clamped to min", 111, 101, 0.2, 1, 0.5, 100, 0.5},
		{"clamped to max", 111, 101, 10000, 1, 0.1, 100, 100},
		{"no max when zero", 111, 101, 10000, 1, 0.1, 0, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcSizeByRisk(tt.entry, tt.sl, tt.risk, tt.pipValue, tt.minSize, tt.maxSize)
			if got != tt.want {
				t.Errorf("CalcSizeByRisk = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalcSizeByRiskIsPure(t *testing.T) {
	a := CalcSizeByRisk(111, 101, 250, 1, 0.1, 100)
	b := CalcSizeByRisk(111, 101, 250, 1, 0.1, 100)
	if a != b {
		t.Errorf("repeated calls diverge: %v vs %v", a, b)
	}
}
