package sessions

import (
	"context"
	"time"

	"gap_bot/internal/models"
	"gap_bot/pkg/logger"
)

// placePatternOrder ставит отложенный стоп-ордер по подтверждённому сетапу.
// Неудача шлюза — попытка брошена, счётчик дня не трогаем.
func (s *Session) placePatternOrder(ctx context.Context, setup models.PatternSetup) {
	size := CalcSizeByRisk(
		setup.Entry,
		setup.StopLoss,
		s.Settings.RiskPerTrade,
		s.Meta.PipValue,
		s.Meta.MinSize,
		s.Meta.MaxSize,
	)

	label := s.nextLabel(setup.ConfirmingBar.OpenTimeUTC)
	orderID, err := s.Gw.PlaceStopOrder(ctx, s.Cfg.InstID, setup.Side(), size, setup.Entry, label)
	if err != nil {
		logger.Error("[%s] place stop order: %v", s.Cfg.InstID, err)
		s.Notifier.Sendf("❗️ [%s] Не удалось поставить отложку: %v", s.Cfg.InstID, err)
		return
	}

	s.tradesToday++
	s.pending[label] = &models.PatternOrder{
		Signature:     setup.Signature,
		ConfirmingBar: setup.ConfirmingBar,
		Label:         label,
		OrderID:       orderID,
		Entry:         setup.Entry,
		StopLoss:      setup.StopLoss,
		TakeProfit:    setup.TakeProfit,
		Size:          size,
		IsLong:        setup.IsLong,
		State:         models.OrderPending,
		CreatedAt:     time.Now(),
	}

	s.Notifier.Sendf("✅ [%s] Отложка %s @ %.4f | SL=%.4f TP=%.4f size=%.1f | %s",
		s.Cfg.InstID, setup.Side(), setup.Entry, setup.StopLoss, setup.TakeProfit, size, setup.Reason)
}

// adjudicatePending — правило четвёртого бара: оценивается на баре ровно
// через один интервал после подтверждающего. Позже неаджудицированный
// ордер просто остаётся pending до фила или снятия по времени.
func (s *Session) adjudicatePending(ctx context.Context, bar models.Bar) {
	for label, o := range s.pending {
		if o.State != models.OrderPending {
			continue
		}
		if bar.OpenTimeUTC.Sub(o.ConfirmingBar.OpenTimeUTC) != s.interval {
			continue
		}
		o.State = models.OrderFourthBarPending

		cb := o.ConfirmingBar
		switch {
		case bar.High < cb.High && bar.Low > cb.Low:
			// inside bar — эскалация в рыночный
			s.escalate(ctx, label, o, bar)
		case (o.IsLong && bar.Low < cb.Low) || (!o.IsLong && bar.High > cb.High):
			// пробой против сделки — снимаем без замены
			s.invalidate(ctx, label, o)
		default:
			// держим как есть
			o.State = models.OrderPending
		}
	}
}

// escalate снимает отложку и входит по рынку; SL/TP пересчитываются от
// цены фила с исходными дистанциями — RR сохраняется.
func (s *Session) escalate(ctx context.Context, label string, o *models.PatternOrder, bar models.Bar) {
	if err := s.Gw.CancelStopOrder(ctx, s.Cfg.InstID, o.OrderID); err != nil {
		logger.Error("[%s] escalate cancel: %v", s.Cfg.InstID, err)
		o.State = models.OrderPending // снять не смогли — ордер живёт дальше
		return
	}
	delete(s.pending, label)
	o.State = models.OrderEscalated

	mktLabel := s.nextLabel(bar.OpenTimeUTC)
	ordID, err := s.Gw.ExecuteMarketOrder(ctx, s.Cfg.InstID, o.Side(), o.Size, mktLabel)
	if err != nil {
		// слот дня уже потрачен при постановке отложки — так и остаётся
		logger.Error("[%s] escalate market order: %v", s.Cfg.InstID, err)
		s.Notifier.Sendf("❗️ [%s] Эскалация не удалась, ордер снят: %v", s.Cfg.InstID, err)
		o.State = models.OrderInvalidated
		return
	}

	fill := bar.Close
	var sl, tp float64
	if o.IsLong {
		sl = fill - o.StopDist()
		tp = fill + o.TPDist()
	} else {
		sl = fill + o.StopDist()
		tp = fill - o.TPDist()
	}

	mo := &models.PatternOrder{
		Signature:     o.Signature,
		ConfirmingBar: o.ConfirmingBar,
		Label:         mktLabel,
		OrderID:       ordID,
		Entry:         fill,
		StopLoss:      sl,
		TakeProfit:    tp,
		Size:          o.Size,
		IsLong:        o.IsLong,
		State:         models.OrderEscalated,
		CreatedAt:     time.Now(),
	}

	s.Notifier.Sendf("🔁 [%s] Inside bar: отложка снята, вход по рынку %s @ %.4f | SL=%.4f TP=%.4f",
		s.Cfg.InstID, mo.Side(), fill, sl, tp)

	// рыночный исполняется сразу; исходная расчётная цена входа — от отложки
	s.markFilled(ctx, mo, bar.OpenTimeLocal, o.Entry)
}

// invalidate снимает отложку после пробоя против сделки.
// Попытка не считается — счётчик дня возвращаем.
func (s *Session) invalidate(ctx context.Context, label string, o *models.PatternOrder) {
	if err := s.Gw.CancelStopOrder(ctx, s.Cfg.InstID, o.OrderID); err != nil {
		logger.Error("[%s] invalidate cancel: %v", s.Cfg.InstID, err)
		o.State = models.OrderPending
		return
	}
	delete(s.pending, label)
	o.State = models.OrderInvalidated

	s.tradesToday--
	if s.tradesToday < 0 {
		s.tradesToday = 0
	}

	s.Notifier.Sendf("🚫 [%s] Пробой против сделки: отложка %s снята", s.Cfg.InstID, o.Side())
}

// markFilled регистрирует исполнение: SL/TP перевыставляются в абсолютной
// цене (пипсовая модификация до фила может разъехаться с целевым уровнем),
// запись о сделке попадает в дневную и годовую коллекции.
func (s *Session) markFilled(ctx context.Context, o *models.PatternOrder, entryLocal time.Time, originalEntry float64) {
	o.State = models.OrderFilled

	if _, err := s.Gw.ModifyStopLossTakeProfit(ctx, s.Cfg.InstID, o.PosSide(), o.Size, o.StopLoss, o.TakeProfit); err != nil {
		logger.Error("[%s] reassert SL/TP: %v", s.Cfg.InstID, err)
		s.Notifier.Sendf("⚠️ [%s] SL/TP не перевыставлены: %v", s.Cfg.InstID, err)
	}

	rec := &models.TradeRecord{
		ID:             o.Label,
		EntryTimeLocal: entryLocal,
		OriginalEntry:  originalEntry,
		IsLong:         o.IsLong,
	}
	s.dayTrades = append(s.dayTrades, rec)
	s.yearTrades = append(s.yearTrades, rec)
	s.records[o.Label] = rec
	s.open[o.Label] = o
}

// cancelAllPending снимает все живые отложки (suspension, конец сессии).
func (s *Session) cancelAllPending(ctx context.Context) {
	for label, o := range s.pending {
		if err := s.Gw.CancelStopOrder(ctx, s.Cfg.InstID, o.OrderID); err != nil {
			logger.Error("[%s] cancel pending %s: %v", s.Cfg.InstID, label, err)
			continue
		}
		o.State = models.OrderInvalidated
		delete(s.pending, label)
	}
}
