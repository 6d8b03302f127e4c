package service

import (
	"fmt"
	"math"
	"time"

	"gap_bot/internal/models"
)

// rangeEpsilon — порог вырожденного бара (high == low с точностью до шума).
const rangeEpsilon = 1e-9

// BodyRatio — |close-open| / (high-low); 1.0 для вырожденного диапазона,
// чтобы не делить на ноль.
func BodyRatio(b models.Bar) float64 {
	r := b.Range()
	if r < rangeEpsilon {
		return 1.0
	}
	return math.Abs(b.Body()) / r
}

// Matcher — трёхбарный continuation-паттерн в направлении гэпа.
// Stateless по тройке баров; processed-set гарантирует, что одно окно
// не оценивается дважды.
type Matcher struct {
	interval  time.Duration
	processed map[models.PatternSignature]struct{}
}

func NewMatcher(interval time.Duration) *Matcher {
	return &Matcher{
		interval:  interval,
		processed: make(map[models.PatternSignature]struct{}),
	}
}

func Signature(b1, b2, b3 models.Bar) models.PatternSignature {
	return models.PatternSignature{
		Bar1Time: b1.OpenTimeUTC,
		Bar2Time: b2.OpenTimeUTC,
		Bar3Time: b3.OpenTimeUTC,
	}
}

func (m *Matcher) Processed(sig models.PatternSignature) bool {
	_, ok := m.processed[sig]
	return ok
}

// Reset чистит processed-set на дневном ресете.
func (m *Matcher) Reset() {
	m.processed = make(map[models.PatternSignature]struct{})
}

// adjacent — бары идут ровно через один интервал (дырки в данных
// пропускаются, окно не помечается обработанным).
func (m *Matcher) adjacent(b1, b2, b3 models.Bar) bool {
	return b2.OpenTimeUTC.Sub(b1.OpenTimeUTC) == m.interval &&
		b3.OpenTimeUTC.Sub(b2.OpenTimeUTC) == m.interval
}

// Scan скользит окном по барам дня и для каждого нового валидного сетапа
// зовёт emit. emit возвращает false, когда дальше сканировать нельзя
// (дневной лимит, политика повторных входов).
func (m *Matcher) Scan(bars []models.Bar, gap models.GapType, pip float64, emit func(models.PatternSetup) bool) {
	if gap == models.GapNone || len(bars) < 3 {
		return
	}
	for i := 0; i+2 < len(bars); i++ {
		b1, b2, b3 := bars[i], bars[i+1], bars[i+2]
		if !m.adjacent(b1, b2, b3) {
			continue
		}
		sig := Signature(b1, b2, b3)
		if m.Processed(sig) {
			continue
		}
		setup, ok := m.Eval(b1, b2, b3, gap, pip)
		m.processed[sig] = struct{}{}
		if !ok {
			continue
		}
		if !emit(setup) {
			return
		}
	}
}

// Eval оценивает одну тройку. Направление берётся только из гэпа:
// бычий сетап смотрим при GapUp, медвежий — при GapDown.
func (m *Matcher) Eval(b1, b2, b3 models.Bar, gap models.GapType, pip float64) (models.PatternSetup, bool) {
	switch gap {
	case models.GapUp:
		return m.evalBullish(b1, b2, b3, pip)
	case models.GapDown:
		return m.evalBearish(b1, b2, b3, pip)
	default:
		return models.PatternSetup{}, false
	}
}

func (m *Matcher) evalBullish(b1, b2, b3 models.Bar, pip float64) (models.PatternSetup, bool) {
	if b1.Close <= b1.Open {
		return models.PatternSetup{}, false
	}

	r2 := BodyRatio(b2)
	if b2.Close <= b2.Open || b2.Close <= b1.High || b2.Low <= b1.Low {
		return models.PatternSetup{}, false
	}
	if !(r2 >= 0.5 || (r2 >= 0.3 && b2.Low > b1.Midpoint())) {
		return models.PatternSetup{}, false
	}

	r3 := BodyRatio(b3)
	if b3.Close <= b3.Open || b3.Close <= b2.High || b3.Low <= b2.Low {
		return models.PatternSetup{}, false
	}
	if !(r3 >= 0.7 || (r3 >= 0.5 && b3.Low > b1.High)) {
		return models.PatternSetup{}, false
	}

	return models.PatternSetup{
		Signature:     Signature(b1, b2, b3),
		ConfirmingBar: b3,
		IsLong:        true,
		Entry:         b3.High + 2*pip,
		StopLoss:      b2.Low - 1*pip,
		TakeProfit:    b3.High + (b3.High - b1.Low),
		Reason:        fmt.Sprintf("3bar-bull r2=%.2f r3=%.2f", r2, r3),
	}, true
}

func (m *Matcher) evalBearish(b1, b2, b3 models.Bar, pip float64) (models.PatternSetup, bool) {
	if b1.Close >= b1.Open {
		return models.PatternSetup{}, false
	}

	r2 := BodyRatio(b2)
	if b2.Close >= b2.Open || b2.Close >= b1.Low || b2.High >= b1.High {
		return models.PatternSetup{}, false
	}
	if !(r2 >= 0.5 || (r2 >= 0.3 && b2.High < b1.Midpoint())) {
		return models.PatternSetup{}, false
	}

	r3 := BodyRatio(b3)
	if b3.Close >= b3.Open || b3.Close >= b2.Low || b3.High >= b2.High {
		return models.PatternSetup{}, false
	}
	if !(r3 >= 0.7 || (r3 >= 0.5 && b3.High < b1.Low)) {
		return models.PatternSetup{}, false
	}

	return models.PatternSetup{
		Signature:     Signature(b1, b2, b3),
		ConfirmingBar: b3,
		IsLong:        false,
		Entry:         b3.Low - 2*pip,
		StopLoss:      b2.High + 1*pip,
		TakeProfit:    b3.Low - (b1.High - b3.Low),
		Reason:        fmt.Sprintf("3bar-bear r2=%.2f r3=%.2f", r2, r3),
	}, true
}
