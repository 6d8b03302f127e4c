package models

import "time"

// OrderState — жизненный цикл отложенного (stop) ордера по паттерну.
type OrderState int

const (
	// OrderPending — стоп-ордер выставлен, ещё не исполнен.
	OrderPending OrderState = iota
	// OrderFourthBarPending — ордер всё ещё pending ровно через один бар
	// после подтверждающего; подлежит правилу четвёртого бара.
	OrderFourthBarPending
	// OrderEscalated — стоп-ордер снят, вместо него рыночный (inside bar).
	OrderEscalated
	// OrderInvalidated — стоп-ордер снят без замены (пробой против сделки).
	OrderInvalidated
	// OrderFilled — исполнен шлюзом; SL/TP перевыставлены в абсолютной цене.
	OrderFilled
	// OrderClosed — терминальное: позиция закрыта.
	OrderClosed
)

func (s OrderState) String() string {
	switch s {
	case OrderPending:
		return "pending"
	case OrderFourthBarPending:
		return "fourth_bar_pending"
	case OrderEscalated:
		return "escalated"
	case OrderInvalidated:
		return "invalidated"
	case OrderFilled:
		return "filled"
	case OrderClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// PatternOrder — живой ордер по паттерну. Владелец — сессия,
// до разрешения (fill+adjust / cancel / эскалация в рыночный).
type PatternOrder struct {
	Signature     PatternSignature
	ConfirmingBar Bar

	Label      string // типизированный lifecycle-ключ, он же метка на шлюзе
	OrderID    string // handle стоп-ордера на шлюзе
	PositionID string // handle позиции после исполнения

	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Size       float64
	IsLong     bool

	State     OrderState
	CreatedAt time.Time
}

func (o *PatternOrder) Side() Side {
	if o.IsLong {
		return SideBuy
	}
	return SideSell
}

// PosSide — сторона позиции на шлюзе.
func (o *PatternOrder) PosSide() string {
	if o.IsLong {
		return "long"
	}
	return "short"
}

// StopDist / TPDist — исходные дистанции, сохраняются при эскалации
// в рыночный ордер (RR не меняется).
func (o *PatternOrder) StopDist() float64 {
	if o.IsLong {
		return o.Entry - o.StopLoss
	}
	return o.StopLoss - o.Entry
}

func (o *PatternOrder) TPDist() float64 {
	if o.IsLong {
		return o.TakeProfit - o.Entry
	}
	return o.Entry - o.TakeProfit
}
