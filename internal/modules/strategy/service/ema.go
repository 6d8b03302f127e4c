package service

import "math"

// SessionAverage — сессионная скользящая средняя. До прогрева Value()
// возвращает defined=false, и детекция гэпа откладывается.
type SessionAverage interface {
	Update(close float64)
	Value() (v float64, defined bool)
}

// SessionEMA — EMA, которую кормят только закрытиями баров внутри
// торговой сессии. Не ресетится на границе дня.
type SessionEMA struct {
	period int
	alpha  float64
	value  float64
	warmup int
}

func NewSessionEMA(period int) *SessionEMA {
	if period <= 1 {
		period = 1
	}
	return &SessionEMA{
		period: period,
		alpha:  2.0 / (float64(period) + 1),
	}
}

func (e *SessionEMA) Update(close float64) {
	if e.warmup == 0 {
		e.value = close
		e.warmup = 1
		return
	}
	e.value = e.alpha*close + (1-e.alpha)*e.value
	if e.warmup < e.period {
		e.warmup++
	}
}

func (e *SessionEMA) Value() (float64, bool) {
	if e.warmup < e.period {
		return math.NaN(), false
	}
	return e.value, true
}
