package models

import "time"

// TradeRecord — одна исполненная позиция. Живёт в двух коллекциях:
// дневной (ресет на границе дня, нужна для политики повторных входов)
// и годовой (ресет на границе года, нужна performance guard).
type TradeRecord struct {
	ID             string
	EntryTimeLocal time.Time
	IsClosed       bool

	// для открытых записей NetProfit держит текущий unrealized PnL,
	// обновляется из кеша позиций перед performance-проверкой
	NetProfit   float64
	GrossProfit float64

	// исходная расчётная цена входа (не цена исполнения!) —
	// именно с ней сравнивается conservative-политика повторного входа
	OriginalEntry float64
	IsLong        bool
}
