package models

import "time"

// OpenPosition — открытая позиция со шлюза.
type OpenPosition struct {
	PositionID string
	InstID     string
	PosSide    string // "long"/"short"
	Size       float64
	AvgEntry   float64
	LastPx     float64
	UPL        float64 // unrealized PnL в валюте счёта
	RealizedPL float64
}

// PendingOrder — отложенный ордер со шлюза.
type PendingOrder struct {
	OrderID   string
	InstID    string
	Side      Side
	Size      float64
	TriggerPx float64
	Label     string
	CreatedAt time.Time
}
