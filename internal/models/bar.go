package models

import "time"

// Bar — закрытая свеча торгового дня. Immutable после создания,
// владелец — буфер дня, чистится при дневном ресете.
type Bar struct {
	Open  float64
	High  float64
	Low   float64
	Close float64

	OpenTimeUTC   time.Time
	OpenTimeLocal time.Time
}

// Range — полный ход свечи.
func (b Bar) Range() float64 { return b.High - b.Low }

// Body — тело свечи (signed: >0 бычья, <0 медвежья).
func (b Bar) Body() float64 { return b.Close - b.Open }

// Midpoint — середина диапазона.
func (b Bar) Midpoint() float64 { return (b.High + b.Low) / 2 }
