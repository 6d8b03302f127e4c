package service

import "gap_bot/internal/models"

// BarBuffer — закрытые бары текущего торгового дня в порядке прихода.
// Владеет барами до дневного ресета.
type BarBuffer struct {
	bars []models.Bar
}

func NewBarBuffer() *BarBuffer {
	return &BarBuffer{bars: make([]models.Bar, 0, 128)}
}

func (b *BarBuffer) Append(bar models.Bar) {
	b.bars = append(b.bars, bar)
}

func (b *BarBuffer) Len() int { return len(b.bars) }

func (b *BarBuffer) At(i int) models.Bar { return b.bars[i] }

// Bars — срез дня; только для чтения, не мутировать.
func (b *BarBuffer) Bars() []models.Bar { return b.bars }

func (b *BarBuffer) First() (models.Bar, bool) {
	if len(b.bars) == 0 {
		return models.Bar{}, false
	}
	return b.bars[0], true
}

func (b *BarBuffer) Reset() {
	b.bars = b.bars[:0]
}
