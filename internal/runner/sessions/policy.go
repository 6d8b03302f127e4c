package sessions

import (
	"context"

	"gap_bot/internal/models"
	"gap_bot/pkg/logger"
)

// additionalTradeAllowed — политика добора после первой сделки дня.
// Conservative не даёт наращивать экспозицию в уже убыточный ход:
// текущая цена не должна быть хуже ИСХОДНОЙ расчётной цены входа
// последней сделки (не цены фила).
func (s *Session) additionalTradeAllowed(ctx context.Context) bool {
	if len(s.dayTrades) == 0 {
		return true // первая сделка дня всегда разрешена
	}
	if s.Settings.AdditionalTradeBy == models.ModeAggressive {
		return true
	}

	last := s.dayTrades[len(s.dayTrades)-1]

	bid, ask, err := s.Gw.BestBidAsk(ctx, s.Cfg.InstID)
	if err != nil {
		// шлюз недоступен — вход пропускаем, событие не фатально
		logger.Error("[%s] best bid/ask: %v", s.Cfg.InstID, err)
		return false
	}

	if last.IsLong {
		return bid >= last.OriginalEntry
	}
	return ask <= last.OriginalEntry
}
