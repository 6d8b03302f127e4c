package sessions

import (
	"context"
	"time"

	"gap_bot/internal/models"
)

// profitFactorExcellent — сентинел "убытков нет, профит есть".
const profitFactorExcellent = 1e9

// PerformanceGuard — годовая защита: после контрольной точки (начало
// второго квартала) считает profit factor и среднюю сделку по записям
// года и отключает входы до конца года, если ПЛОХИ ОБЕ метрики.
type PerformanceGuard struct {
	MinProfitFactor float64
	MinAverageTrade float64
}

// Evaluate — метрики по записям года. Открытые записи участвуют со своим
// текущим unrealized PnL (прокся реализованного результата).
func (g PerformanceGuard) Evaluate(records []*models.TradeRecord) (profitFactor, averageTrade float64) {
	if len(records) == 0 {
		return 0, 0
	}

	var grossProfit, grossLoss, sum float64
	for _, r := range records {
		p := r.NetProfit
		sum += p
		if p >= 0 {
			grossProfit += p
		} else {
			grossLoss += -p
		}
	}

	if grossLoss == 0 {
		if grossProfit > 0 {
			profitFactor = profitFactorExcellent
		}
	} else {
		profitFactor = grossProfit / grossLoss
	}
	averageTrade = sum / float64(len(records))
	return profitFactor, averageTrade
}

// ShouldSuspend — true только когда обе метрики ниже порогов.
// Одна плохая метрика торговлю не останавливает.
func (g PerformanceGuard) ShouldSuspend(records []*models.TradeRecord) bool {
	if len(records) == 0 {
		return false
	}
	pf, avg := g.Evaluate(records)
	return avg < g.MinAverageTrade && pf < g.MinProfitFactor
}

// performanceCheckpoint — контрольная точка: начало второго квартала.
func performanceCheckpoint(now time.Time) bool {
	return now.Month() >= time.April
}

// maybeCheckPerformance запускает проверку один раз в год после
// контрольной точки. При срабатывании снимает все отложки и блокирует
// входы до границы года.
func (s *Session) maybeCheckPerformance(ctx context.Context, bar models.Bar) {
	if !s.Settings.PerformanceProtection || s.perfChecked || s.suspended {
		return
	}
	if !performanceCheckpoint(bar.OpenTimeLocal) {
		return
	}
	s.perfChecked = true

	// только записи текущего календарного года
	records := make([]*models.TradeRecord, 0, len(s.yearTrades))
	for _, r := range s.yearTrades {
		if r.EntryTimeLocal.Year() == s.year {
			records = append(records, r)
		}
	}

	if !s.guard.ShouldSuspend(records) {
		pf, avg := s.guard.Evaluate(records)
		s.Notifier.Sendf("📈 [%s] Годовая проверка пройдена: PF=%.2f avg=%.2f (сделок=%d)",
			s.Cfg.InstID, pf, avg, len(records))
		return
	}

	pf, avg := s.guard.Evaluate(records)
	s.suspended = true
	s.cancelAllPending(ctx)
	s.Notifier.Sendf("⛔️ [%s] Годовая защита: PF=%.2f < %.2f и avg=%.2f < %.2f — входы остановлены до конца года",
		s.Cfg.InstID, pf, s.guard.MinProfitFactor, avg, s.guard.MinAverageTrade)
}
