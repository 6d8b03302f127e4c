package models

import "time"

// PatternSignature — ключ дедупликации трёхбарного окна.
// Окно, попавшее в processed-set, повторно не оценивается.
type PatternSignature struct {
	Bar1Time time.Time
	Bar2Time time.Time
	Bar3Time time.Time
}

// PatternSetup — подтверждённый трёхбарный сетап с готовыми уровнями.
type PatternSetup struct {
	Signature     PatternSignature
	ConfirmingBar Bar // третий бар паттерна
	IsLong        bool

	Entry      float64
	StopLoss   float64
	TakeProfit float64

	Reason string
}

func (p PatternSetup) Side() Side {
	if p.IsLong {
		return SideBuy
	}
	return SideSell
}
