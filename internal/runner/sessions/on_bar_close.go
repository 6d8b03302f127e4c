package sessions

import (
	"context"

	"gap_bot/internal/models"
	"gap_bot/internal/modules/config"
	strategy "gap_bot/internal/modules/strategy/service"
)

// OnBarClose — главный обработчик события "бар закрыт". Вызывается строго
// последовательно, bar-closed текущего бара приходит раньше следующего.
func (s *Session) OnBarClose(ctx context.Context, bar models.Bar) {
	s.rollYear(bar)
	s.rollDay(bar)

	// годовая защита: проверка раз в год после начала второго квартала
	s.maybeCheckPerformance(ctx, bar)
	if s.suspended {
		return
	}

	// правило четвёртого бара для живых отложек — до любых дневных гейтов
	s.adjudicatePending(ctx, bar)

	min := config.MinutesOf(bar.OpenTimeLocal)

	// конец сессии: ликвидация позиций стратегии, отложки снимаются
	if min >= s.Cfg.SessionEnd.Minutes() {
		s.liquidate(ctx)
		return
	}
	if min < s.Cfg.SessionStart.Minutes() {
		return // вне сессии не сканируем
	}

	// EMA сессионная: для гэпа берём значение ДО текущего бара,
	// обновляем после — первый бар дня сверяется со вчерашним хвостом
	emaPrev, _ := s.EMA.Value() // NaN пока не прогрета
	s.EMA.Update(bar.Close)

	if !s.canTradeMore() {
		return // дневной лимит выбран — без сканирования
	}
	if min >= s.Cfg.EntryCutoff.Minutes() {
		return // после отсечки новые входы не ищем
	}

	// гэп: первый бар дня, для которого EMA определена
	if !s.gapDone {
		if gap, determined := strategy.IdentifyGap(bar.High, bar.Low, emaPrev); determined {
			s.gap = gap
			s.gapDone = true
			if gap != models.GapNone {
				s.Notifier.Sendf("🔎 [%s] Гэп дня: %s (EMA=%.4f)", s.Cfg.InstID, gap, emaPrev)
			}
		}
	}

	s.Bars.Append(bar)

	if !s.gapDone || s.gap == models.GapNone || s.Bars.Len() < 3 {
		return
	}

	s.Matcher.Scan(s.Bars.Bars(), s.gap, s.Meta.PipSize, func(setup models.PatternSetup) bool {
		if !s.canTradeMore() {
			return false
		}
		if !s.additionalTradeAllowed(ctx) {
			return false
		}
		s.placePatternOrder(ctx, setup)
		return s.canTradeMore()
	})
}
