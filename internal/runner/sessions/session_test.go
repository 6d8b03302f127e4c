package sessions

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"gap_bot/internal/models"
	"gap_bot/internal/modules/config"
	strategy "gap_bot/internal/modules/strategy/service"
)

type placedStop struct {
	side      models.Side
	size      float64
	triggerPx float64
	label     string
}

type placedTPSL struct {
	posSide string
	sl, tp  float64
}

// fakeGateway пишет все вызовы; ответы настраиваются полями.
type fakeGateway struct {
	stops    []placedStop
	markets  []placedStop
	canceled []string
	closed   []string
	tpsl     []placedTPSL

	bid, ask  float64
	bidAskErr error
	placeErr  error

	pendingOnGw []models.PendingOrder
	positions   []models.OpenPosition

	seq int
}

func (g *fakeGateway) PlaceStopOrder(_ context.Context, _ string, side models.Side, size, triggerPx float64, label string) (string, error) {
	if g.placeErr != nil {
		return "", g.placeErr
	}
	g.seq++
	g.stops = append(g.stops, placedStop{side, size, triggerPx, label})
	return "algo-" + strconv.Itoa(g.seq), nil
}

func (g *fakeGateway) CancelStopOrder(_ context.Context, _ string, algoID string) error {
	g.canceled = append(g.canceled, algoID)
	return nil
}

func (g *fakeGateway) ExecuteMarketOrder(_ context.Context, _ string, side models.Side, size float64, label string) (string, error) {
	g.seq++
	g.markets = append(g.markets, placedStop{side: side, size: size, label: label})
	return "ord-" + strconv.Itoa(g.seq), nil
}

func (g *fakeGateway) ModifyStopLossTakeProfit(_ context.Context, _ string, posSide string, _, sl, tp float64) (string, error) {
	g.tpsl = append(g.tpsl, placedTPSL{posSide, sl, tp})
	return "tpsl", nil
}

func (g *fakeGateway) ClosePosition(_ context.Context, _ string, posSide string) error {
	g.closed = append(g.closed, posSide)
	return nil
}

func (g *fakeGateway) OpenPositions(context.Context, string) ([]models.OpenPosition, error) {
	return g.positions, nil
}

func (g *fakeGateway) PendingStopOrders(context.Context, string, string) ([]models.PendingOrder, error) {
	return g.pendingOnGw, nil
}

func (g *fakeGateway) GetInstrumentMeta(context.Context, string) (models.Instrument, error) {
	return models.Instrument{PipSize: 1, PipValue: 1, MinSize: 0.1, MaxSize: 100}, nil
}

func (g *fakeGateway) BestBidAsk(context.Context, string) (float64, float64, error) {
	return g.bid, g.ask, g.bidAskErr
}

type fakeNotifier struct{ msgs []string }

func (n *fakeNotifier) Send(msg string) { n.msgs = append(n.msgs, msg) }
func (n *fakeNotifier) Sendf(format string, args ...any) {
	n.Send(fmt.Sprintf(format, args...))
}

func testConfig() *config.Config {
	cfg := &config.Config{
		InstID:    "TEST-SWAP",
		Timeframe: "5m",
		Timezone:  "UTC",

		SessionStart: config.TimeOfDay{Hour: 9, Minute: 30},
		SessionEnd:   config.TimeOfDay{Hour: 16, Minute: 0},
		EntryCutoff:  config.TimeOfDay{Hour: 15, Minute: 0},

		EMAPeriod: 1,
	}
	return cfg
}

func testSettings() *models.TradingSettings {
	return &models.TradingSettings{
		RiskPerTrade:      250,
		MaxTradesPerDay:   1,
		AdditionalTradeBy: models.ModeAggressive,

		PerformanceProtection: false,
		MinProfitFactor:       1,
		MinAverageTrade:       0,
	}
}

func newTestSession(settings *models.TradingSettings) (*Session, *fakeGateway, *fakeNotifier) {
	cfg := testConfig()
	gw := &fakeGateway{}
	n := &fakeNotifier{}
	s := New(cfg, settings, gw, n,
		strategy.NewBarBuffer(),
		strategy.NewMatcher(cfg.BarInterval()),
		strategy.NewSessionEMA(cfg.EMAPeriod),
	)
	s.Meta = models.Instrument{PipSize: 1, PipValue: 1, MinSize: 0.1, MaxSize: 100}
	return s, gw, n
}

var marchDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func barOn(day time.Time, hh, mm int, open, high, low, close float64) models.Bar {
	ts := time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, time.UTC)
	return models.Bar{
		Open: open, High: high, Low: low, Close: close,
		OpenTimeUTC:   ts,
		OpenTimeLocal: ts,
	}
}

func sessionBar(t *testing.T, hh, mm int, open, high, low, close float64) models.Bar {
	t.Helper()
	return barOn(marchDay, hh, mm, open, high, low, close)
}

// Прогон дня до постановки отложки: медвежий разгонный бар кормит EMA,
// гэп вверх на втором баре, затем каноничная тройка.
func runToPlacementOn(t *testing.T, s *Session, day time.Time) models.Bar {
	t.Helper()
	ctx := context.Background()

	s.OnBarClose(ctx, barOn(day, 9, 30, 100.2, 100.5, 99.5, 100)) // EMA <- 100
	s.OnBarClose(ctx, barOn(day, 9, 35, 101, 102, 101, 102))      // low>EMA: GapUp
	s.OnBarClose(ctx, barOn(day, 9, 40, 102, 106, 102, 105))
	b3 := barOn(day, 9, 45, 105, 109, 105, 108)
	s.OnBarClose(ctx, b3)
	return b3
}

func runToPlacement(t *testing.T, s *Session) models.Bar {
	t.Helper()
	return runToPlacementOn(t, s, marchDay)
}

func TestOnBarClosePlacesOrderOnPattern(t *testing.T) {
	s, gw, _ := newTestSession(testSettings())
	runToPlacement(t, s)

	if s.Gap() != models.GapUp {
		t.Fatalf("Gap = %v, want GapUp", s.Gap())
	}
	if len(gw.stops) != 1 {
		t.Fatalf("placed %d stop orders, want 1", len(gw.stops))
	}
	got := gw.stops[0]
	if got.side != models.SideBuy {
		t.Errorf("side = %v, want BUY", got.side)
	}
	if got.triggerPx != 111 {
		t.Errorf("trigger = %v, want 111", got.triggerPx)
	}
	// риск 250$ / (10 пунктов * 1$) = 25
	if got.size != 25 {
		t.Errorf("size = %v, want 25", got.size)
	}
	if s.TradesToday() != 1 {
		t.Errorf("TradesToday = %d, want 1", s.TradesToday())
	}
}

func TestFourthBarInsideEscalatesToMarket(t *testing.T) {
	s, gw, _ := newTestSession(testSettings())
	runToPlacement(t, s)

	// high<109, low>105 — inside bar подтверждающего
	s.OnBarClose(context.Background(), sessionBar(t, 9, 50, 106, 108, 106, 107))

	if len(gw.canceled) != 1 {
		t.Fatalf("canceled %d orders, want 1", len(gw.canceled))
	}
	if len(gw.markets) != 1 {
		t.Fatalf("market orders = %d, want 1", len(gw.markets))
	}
	if gw.markets[0].side != models.SideBuy || gw.markets[0].size != 25 {
		t.Errorf("market order = %+v, want BUY size 25", gw.markets[0])
	}

	// дистанции исходные: stop 10 и target 6 от нового фила 107
	if len(gw.tpsl) != 1 {
		t.Fatalf("tpsl calls = %d, want 1", len(gw.tpsl))
	}
	if gw.tpsl[0].sl != 97 || gw.tpsl[0].tp != 113 {
		t.Errorf("tpsl = (%v, %v), want (97, 113)", gw.tpsl[0].sl, gw.tpsl[0].tp)
	}

	// слот дня эскалация не возвращает
	if s.TradesToday() != 1 {
		t.Errorf("TradesToday = %d, want 1", s.TradesToday())
	}
	if len(s.dayTrades) != 1 || s.dayTrades[0].OriginalEntry != 111 {
		t.Errorf("dayTrades must keep original intended entry 111, got %+v", s.dayTrades)
	}
}

func TestFourthBarBreakAgainstCancels(t *testing.T) {
	s, gw, _ := newTestSession(testSettings())
	runToPlacement(t, s)

	// low пробивает low подтверждающего — снятие без замены
	s.OnBarClose(context.Background(), sessionBar(t, 9, 50, 106, 107, 104, 105))

	if len(gw.canceled) != 1 {
		t.Fatalf("canceled %d orders, want 1", len(gw.canceled))
	}
	if len(gw.markets) != 0 {
		t.Errorf("market orders = %d, want 0", len(gw.markets))
	}
	// попытка не считается — слот возвращён
	if s.TradesToday() != 0 {
		t.Errorf("TradesToday = %d, want 0", s.TradesToday())
	}
}

func TestFourthBarHoldKeepsOrderPending(t *testing.T) {
	s, gw, _ := newTestSession(testSettings())
	runToPlacement(t, s)

	// и не inside, и не пробой против лонга
	s.OnBarClose(context.Background(), sessionBar(t, 9, 50, 108, 110, 106, 108.5))

	if len(gw.canceled) != 0 || len(gw.markets) != 0 {
		t.Errorf("hold must not touch the order: canceled=%d markets=%d",
			len(gw.canceled), len(gw.markets))
	}
	if len(s.pending) != 1 {
		t.Errorf("pending = %d, want 1", len(s.pending))
	}
	for _, o := range s.pending {
		if o.State != models.OrderPending {
			t.Errorf("state = %v, want pending", o.State)
		}
	}
}

func TestPlaceFailureLeavesCounterUntouched(t *testing.T) {
	s, gw, _ := newTestSession(testSettings())
	gw.placeErr = fmt.Errorf("insufficient margin")
	runToPlacement(t, s)

	if s.TradesToday() != 0 {
		t.Errorf("TradesToday = %d, want 0 after failed placement", s.TradesToday())
	}
	if len(s.pending) != 0 {
		t.Errorf("pending = %d, want 0", len(s.pending))
	}
}

func TestDailyCapBlocksFurtherEntries(t *testing.T) {
	settings := testSettings()
	settings.MaxTradesPerDay = 1
	s, gw, _ := newTestSession(settings)
	runToPlacement(t, s)

	// ещё одна валидная тройка выше, но лимит дня уже выбран
	ctx := context.Background()
	s.OnBarClose(ctx, sessionBar(t, 9, 50, 108, 112, 108, 111))
	s.OnBarClose(ctx, sessionBar(t, 9, 55, 111, 115, 111, 114))

	if len(gw.stops) != 1 {
		t.Errorf("placed %d stop orders, want 1 (daily cap)", len(gw.stops))
	}
}

func TestAdditionalTradePolicy(t *testing.T) {
	tests := []struct {
		name   string
		mode   models.AdditionalTradeMode
		isLong bool
		entry  float64
		bid    float64
		ask    float64
		want   bool
	}{
		{"conservative long adverse bid", models.ModeConservative, true, 4500, 4490, 4491, false},
		{"conservative long favorable bid", models.ModeConservative, true, 4500, 4510, 4511, true},
		{"conservative long at entry", models.ModeConservative, true, 4500, 4500, 4501, true},
		{"conservative short adverse ask", models.ModeConservative, false, 4500, 4509, 4510, false},
		{"conservative short favorable ask", models.ModeConservative, false, 4500, 4489, 4490, true},
		{"aggressive ignores price", models.ModeAggressive, true, 4500, 4000, 4001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings()
			settings.AdditionalTradeBy = tt.mode
			s, gw, _ := newTestSession(settings)
			gw.bid, gw.ask = tt.bid, tt.ask

			s.dayTrades = []*models.TradeRecord{{OriginalEntry: tt.entry, IsLong: tt.isLong}}
			if got := s.additionalTradeAllowed(context.Background()); got != tt.want {
				t.Errorf("additionalTradeAllowed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFirstTradeOfDayAlwaysAllowed(t *testing.T) {
	settings := testSettings()
	settings.AdditionalTradeBy = models.ModeConservative
	s, gw, _ := newTestSession(settings)
	gw.bidAskErr = fmt.Errorf("must not be called")

	if !s.additionalTradeAllowed(context.Background()) {
		t.Error("first trade of the day must be allowed without price check")
	}
}

func TestSessionEndLiquidates(t *testing.T) {
	s, gw, _ := newTestSession(testSettings())
	runToPlacement(t, s)
	// inside bar -> эскалация даёт открытую позицию
	ctx := context.Background()
	s.OnBarClose(ctx, sessionBar(t, 9, 50, 106, 108, 106, 107))

	s.OnBarClose(ctx, sessionBar(t, 16, 0, 107, 108, 106, 107))

	if len(gw.closed) != 1 || gw.closed[0] != "long" {
		t.Errorf("closed = %v, want [long]", gw.closed)
	}
}

func TestDayResetClearsDailyStateKeepsYearly(t *testing.T) {
	s, _, _ := newTestSession(testSettings())
	runToPlacement(t, s)
	ctx := context.Background()
	s.OnBarClose(ctx, sessionBar(t, 9, 50, 106, 108, 106, 107)) // эскалация -> запись

	if len(s.yearTrades) != 1 {
		t.Fatalf("yearTrades = %d, want 1", len(s.yearTrades))
	}

	// первый бар следующего дня
	next := sessionBar(t, 9, 30, 107, 108, 106, 107)
	next.OpenTimeUTC = next.OpenTimeUTC.AddDate(0, 0, 1)
	next.OpenTimeLocal = next.OpenTimeUTC
	s.OnBarClose(ctx, next)

	if s.TradesToday() != 0 {
		t.Errorf("TradesToday = %d, want 0 after day reset", s.TradesToday())
	}
	if len(s.dayTrades) != 0 {
		t.Errorf("dayTrades = %d, want 0 after day reset", len(s.dayTrades))
	}
	if s.Gap() != models.GapNone {
		t.Errorf("Gap = %v, want none after day reset", s.Gap())
	}
	if len(s.yearTrades) != 1 {
		t.Errorf("yearTrades = %d, want 1 (day reset must not touch yearly records)", len(s.yearTrades))
	}
}

func TestYearResetLiftsSuspension(t *testing.T) {
	s, _, _ := newTestSession(testSettings())
	ctx := context.Background()
	s.OnBarClose(ctx, sessionBar(t, 9, 30, 100.2, 100.5, 99.5, 100))

	s.suspended = true
	s.yearTrades = []*models.TradeRecord{{NetProfit: -10}}

	next := sessionBar(t, 9, 30, 100, 101, 99, 100)
	next.OpenTimeUTC = time.Date(2027, 1, 4, 9, 30, 0, 0, time.UTC)
	next.OpenTimeLocal = next.OpenTimeUTC
	s.OnBarClose(ctx, next)

	if s.Suspended() {
		t.Error("suspension must lift at year boundary")
	}
	if len(s.yearTrades) != 0 {
		t.Errorf("yearTrades = %d, want 0 after year reset", len(s.yearTrades))
	}
}

func TestPerformanceGuardSuspendsAndCancelsPending(t *testing.T) {
	settings := testSettings()
	settings.PerformanceProtection = true
	settings.MinProfitFactor = 1
	settings.MinAverageTrade = 0
	s, gw, _ := newTestSession(settings)

	// апрельский день: первая проверка года проходит (сделок нет),
	// дальше ставится отложка
	aprilDay := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	runToPlacementOn(t, s, aprilDay)
	if len(s.pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(s.pending))
	}

	// перепроверка с убыточным годом
	s.perfChecked = false
	for _, r := range []float64{-10, -20} {
		s.yearTrades = append(s.yearTrades, &models.TradeRecord{
			NetProfit:      r,
			EntryTimeLocal: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		})
	}
	s.OnBarClose(context.Background(), barOn(aprilDay, 10, 0, 107, 108, 106, 107))

	if !s.Suspended() {
		t.Fatal("guard must suspend on bad year-to-date metrics")
	}
	if len(gw.canceled) != 1 {
		t.Errorf("canceled = %d, want 1 (pending orders pulled on suspension)", len(gw.canceled))
	}
	if len(s.pending) != 0 {
		t.Errorf("pending = %d, want 0", len(s.pending))
	}
}

func TestEntryCutoffBlocksScanning(t *testing.T) {
	s, gw, _ := newTestSession(testSettings())
	ctx := context.Background()

	s.OnBarClose(ctx, sessionBar(t, 9, 30, 100.2, 100.5, 99.5, 100))
	s.OnBarClose(ctx, sessionBar(t, 14, 50, 101, 102, 101, 102))
	s.OnBarClose(ctx, sessionBar(t, 14, 55, 102, 106, 102, 105))
	s.OnBarClose(ctx, sessionBar(t, 15, 0, 105, 109, 105, 108)) // на отсечке

	if len(gw.stops) != 0 {
		t.Errorf("placed %d stop orders, want 0 at/after entry cutoff", len(gw.stops))
	}
}

func TestRefreshPositionsMarksFillAndClose(t *testing.T) {
	s, gw, _ := newTestSession(testSettings())
	runToPlacement(t, s)
	ctx := context.Background()

	// шлюз больше не видит отложку — значит, исполнена
	gw.pendingOnGw = nil
	gw.positions = []models.OpenPosition{{PosSide: "long", UPL: 40}}
	s.RefreshPositions(ctx)

	if len(s.open) != 1 {
		t.Fatalf("open = %d, want 1 after fill detected", len(s.open))
	}
	if len(gw.tpsl) != 1 {
		t.Errorf("tpsl calls = %d, want 1 (absolute SL/TP after fill)", len(gw.tpsl))
	}
	var rec *models.TradeRecord
	for _, r := range s.records {
		rec = r
	}
	if rec == nil || rec.NetProfit != 40 {
		t.Fatalf("record NetProfit = %+v, want 40", rec)
	}

	// позиция исчезла — запись закрывается с последним PnL
	gw.positions = nil
	s.RefreshPositions(ctx)

	if len(s.open) != 0 {
		t.Errorf("open = %d, want 0 after position closed", len(s.open))
	}
	if !rec.IsClosed || rec.GrossProfit != 40 {
		t.Errorf("record = %+v, want closed with GrossProfit 40", rec)
	}
}
