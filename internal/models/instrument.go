package models

// Instrument — метаданные символа со шлюза, уже распаршенные в числа.
type Instrument struct {
	InstID string

	PipSize  float64 // размер пипса в цене
	PipValue float64 // стоимость пипса на единицу объёма, в валюте счёта
	TickSize float64

	LotStep float64 // шаг объёма
	MinSize float64
	MaxSize float64
}
