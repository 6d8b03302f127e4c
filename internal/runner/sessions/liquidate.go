package sessions

import (
	"context"

	"gap_bot/pkg/logger"
)

// liquidate — конец сессии: снимаем отложки и закрываем позиции стратегии.
// Финализацию записей (realized PnL) сделает ближайший RefreshPositions,
// когда шлюз подтвердит, что позиций больше нет.
func (s *Session) liquidate(ctx context.Context) {
	if len(s.pending) == 0 && len(s.open) == 0 {
		return
	}

	s.cancelAllPending(ctx)

	closed := map[string]bool{}
	for _, o := range s.open {
		side := o.PosSide()
		if closed[side] {
			continue
		}
		if err := s.Gw.ClosePosition(ctx, s.Cfg.InstID, side); err != nil {
			logger.Error("[%s] session-end close %s: %v", s.Cfg.InstID, side, err)
			continue
		}
		closed[side] = true
	}

	if len(closed) > 0 {
		s.Notifier.Sendf("🕒 [%s] Конец сессии: позиции закрыты, отложки сняты", s.Cfg.InstID)
	}
}
