package sessions

import (
	"context"
	"strconv"
	"time"

	"gap_bot/internal/models"
	"gap_bot/internal/modules/config"
	strategy "gap_bot/internal/modules/strategy/service"
)

// Gateway — контракт биржевого шлюза, который движок потребляет,
// но не реализует. Вызовы синхронные, fail-or-return, без ретраев
// на стороне движка.
type Gateway interface {
	PlaceStopOrder(ctx context.Context, instID string, side models.Side, size, triggerPx float64, label string) (string, error)
	CancelStopOrder(ctx context.Context, instID, algoID string) error
	ExecuteMarketOrder(ctx context.Context, instID string, side models.Side, size float64, label string) (string, error)
	ModifyStopLossTakeProfit(ctx context.Context, instID, posSide string, size, sl, tp float64) (string, error)
	ClosePosition(ctx context.Context, instID, posSide string) error
	OpenPositions(ctx context.Context, instID string) ([]models.OpenPosition, error)
	PendingStopOrders(ctx context.Context, instID, labelPrefix string) ([]models.PendingOrder, error)
	GetInstrumentMeta(ctx context.Context, instID string) (models.Instrument, error)
	BestBidAsk(ctx context.Context, instID string) (bid, ask float64, err error)
}

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// labelPrefix метит наши ордера на шлюзе.
const labelPrefix = "gapbot"

// Session — состояние движка по одному инструменту. Вся мутация идёт
// из одной горутины-потребителя событий (bar-closed, refresh-tick),
// поэтому мьютексы не нужны: обработчик события дорабатывает до конца
// прежде, чем начнётся следующий.
type Session struct {
	Cfg      *config.Config
	Settings *models.TradingSettings
	Gw       Gateway
	Notifier Notifier

	Meta     models.Instrument
	interval time.Duration

	// стратегия
	Bars    *strategy.BarBuffer
	Matcher *strategy.Matcher
	EMA     strategy.SessionAverage

	// дневное состояние (ресет на границе дня)
	day         time.Time // локальная дата, zero = не инициализирована
	gap         models.GapType
	gapDone     bool
	tradesToday int
	dayTrades   []*models.TradeRecord

	// годовое состояние (ресет на границе года)
	year        int
	perfChecked bool
	suspended   bool
	yearTrades  []*models.TradeRecord

	guard PerformanceGuard

	// живые ордера/позиции, ключ — label (типизированный handle вместо
	// строкового поиска по префиксу на каждый чих)
	pending map[string]*models.PatternOrder
	open    map[string]*models.PatternOrder
	records map[string]*models.TradeRecord

	labelSeq int64
}

func New(
	cfg *config.Config,
	settings *models.TradingSettings,
	gw Gateway,
	n Notifier,
	bars *strategy.BarBuffer,
	matcher *strategy.Matcher,
	ema strategy.SessionAverage,
) *Session {
	return &Session{
		Cfg:      cfg,
		Settings: settings,
		Gw:       gw,
		Notifier: n,
		interval: cfg.BarInterval(),

		Bars:    bars,
		Matcher: matcher,
		EMA:     ema,

		guard: PerformanceGuard{
			MinProfitFactor: settings.MinProfitFactor,
			MinAverageTrade: settings.MinAverageTrade,
		},

		pending: make(map[string]*models.PatternOrder),
		open:    make(map[string]*models.PatternOrder),
		records: make(map[string]*models.TradeRecord),
	}
}

// Suspended — движок остановлен годовой защитой.
func (s *Session) Suspended() bool { return s.suspended }

// Gap — активный гэп дня.
func (s *Session) Gap() models.GapType { return s.gap }

// TradesToday — счётчик сделок дня (инкремент при постановке отложки,
// декремент при break-against инвалидации; эскалация слот не возвращает).
func (s *Session) TradesToday() int { return s.tradesToday }

func (s *Session) nextLabel(now time.Time) string {
	s.labelSeq++
	return labelPrefix + now.UTC().Format("20060102") + "x" + strconv.FormatInt(s.labelSeq, 10)
}

// canTradeMore — дневной лимит ещё не выбран (-1 = без лимита).
func (s *Session) canTradeMore() bool {
	if s.Settings.MaxTradesPerDay < 0 {
		return true
	}
	return s.tradesToday < s.Settings.MaxTradesPerDay
}

// rollDay ресетит дневное состояние на первом баре новой локальной даты.
// Годовые записи дневной ресет переживают.
func (s *Session) rollDay(bar models.Bar) {
	y, m, d := bar.OpenTimeLocal.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, bar.OpenTimeLocal.Location())
	if !s.day.IsZero() && s.day.Equal(date) {
		return
	}
	s.day = date

	s.Bars.Reset()
	s.Matcher.Reset()
	s.gap = models.GapNone
	s.gapDone = false
	s.tradesToday = 0
	s.dayTrades = nil
	// отложки прошлого дня сняты ликвидацией конца сессии; чистим хэндлы
	s.pending = make(map[string]*models.PatternOrder)
}

// rollYear ресетит годовое состояние; снимает suspension.
func (s *Session) rollYear(bar models.Bar) {
	year := bar.OpenTimeLocal.Year()
	if s.year == 0 {
		s.year = year
		return
	}
	if year == s.year {
		return
	}
	s.year = year
	s.yearTrades = nil
	s.perfChecked = false
	if s.suspended {
		s.suspended = false
		s.Notifier.Sendf("🎆 [%s] Новый год: защита снята, торговля возобновлена", s.Cfg.InstID)
	}
}
