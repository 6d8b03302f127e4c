package sessions

import (
	"context"
	"time"

	"gap_bot/internal/models"
	"gap_bot/pkg/logger"
)

// RefreshPositions синхронизирует локальные хэндлы со шлюзом:
//   - отложка исчезла из pending-списка шлюза -> считаем исполненной,
//     перевыставляем SL/TP в абсолюте и заводим запись о сделке;
//   - открытые записи маркируем текущим unrealized PnL (его же потом
//     берёт годовая проверка);
//   - позиция стороны исчезла -> записи стороны финализируются с
//     последним известным PnL.
//
// Вызывается из той же горутины-потребителя, что и OnBarClose.
func (s *Session) RefreshPositions(ctx context.Context) {
	// 1) филы отложек
	if len(s.pending) > 0 {
		gwPending, err := s.Gw.PendingStopOrders(ctx, s.Cfg.InstID, labelPrefix)
		if err != nil {
			logger.Error("[%s] pending orders: %v", s.Cfg.InstID, err)
			return
		}
		alive := make(map[string]bool, len(gwPending))
		for _, p := range gwPending {
			alive[p.OrderID] = true
		}
		for label, o := range s.pending {
			if o.State != models.OrderPending && o.State != models.OrderFourthBarPending {
				continue
			}
			if alive[o.OrderID] {
				continue
			}
			delete(s.pending, label)
			s.Notifier.Sendf("🎯 [%s] Отложка %s исполнена @ %.4f", s.Cfg.InstID, o.Side(), o.Entry)
			s.markFilled(ctx, o, time.Now().In(s.Cfg.Location()), o.Entry)
		}
	}

	if len(s.open) == 0 {
		return
	}

	// 2) сверка позиций
	positions, err := s.Gw.OpenPositions(ctx, s.Cfg.InstID)
	if err != nil {
		logger.Error("[%s] open positions: %v", s.Cfg.InstID, err)
		return
	}
	bySide := make(map[string]models.OpenPosition, len(positions))
	for _, p := range positions {
		bySide[p.PosSide] = p
	}

	perSide := map[string]int{}
	for _, o := range s.open {
		perSide[o.PosSide()]++
	}

	for label, o := range s.open {
		rec := s.records[label]
		if rec == nil {
			delete(s.open, label)
			continue
		}
		p, stillOpen := bySide[o.PosSide()]
		if stillOpen {
			// UPL стороны делим поровну между записями этой стороны
			rec.NetProfit = p.UPL / float64(perSide[o.PosSide()])
			continue
		}

		// позиции нет — закрыта по SL/TP или ликвидацией
		rec.IsClosed = true
		rec.GrossProfit = rec.NetProfit
		o.State = models.OrderClosed
		delete(s.open, label)
		delete(s.records, label)
		s.Notifier.Sendf("🏁 [%s] Позиция %s закрыта, PnL=%.2f", s.Cfg.InstID, o.Side(), rec.NetProfit)
	}
}
