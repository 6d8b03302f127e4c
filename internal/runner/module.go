package runner

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"

	"gap_bot/internal/models"
	gateway "gap_bot/internal/modules/gateway/service"
	healthsvc "gap_bot/internal/modules/health/service"
	"gap_bot/internal/notify"
	"gap_bot/internal/runner/sessions"
	"gap_bot/pkg/logger"
)

// refreshEvery — период сверки живых ордеров и позиций со шлюзом.
const refreshEvery = 15 * time.Second

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			notify.NewFromConfig, // -> notify.Notifier
			func(c *gateway.Client) sessions.Gateway { return c },
			func(n notify.Notifier) sessions.Notifier { return n },
			sessions.New, // -> *sessions.Session
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			s *sessions.Session,
			bars chan models.Bar,
			health *healthsvc.State,
			ctx context.Context,
		) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go run(ctx, s, bars, health)
					return nil
				},
			})
		}),
	)
}

// run — единственный потребитель событий: мутация состояния сессии
// строго последовательна, один бар дорабатывается до следующего.
func run(ctx context.Context, s *sessions.Session, bars <-chan models.Bar, health *healthsvc.State) {
	warmupMeta(ctx, s)
	health.SetReady(true)

	refresh := time.NewTicker(refreshEvery)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case bar := <-bars:
			span := opentracing.StartSpan("on_bar_close")
			span.SetTag("inst_id", s.Cfg.InstID)
			span.SetTag("bar_open", bar.OpenTimeUTC)
			s.OnBarClose(opentracing.ContextWithSpan(ctx, span), bar)
			span.Finish()

			health.TouchBar(bar.OpenTimeUTC)
			health.SetSuspended(s.Suspended())
		case <-refresh.C:
			s.RefreshPositions(ctx)
		}
	}
}

// warmupMeta тянет метаданные инструмента до первого успеха: без шага
// цены и стоимости пункта считать уровни и размер нельзя.
func warmupMeta(ctx context.Context, s *sessions.Session) {
	for {
		meta, err := s.Gw.GetInstrumentMeta(ctx, s.Cfg.InstID)
		if err == nil {
			s.Meta = meta
			logger.Info("[%s] instrument meta: pip=%v pipValue=%v lot=%v",
				s.Cfg.InstID, meta.PipSize, meta.PipValue, meta.LotStep)
			return
		}
		logger.Error("[%s] instrument meta: %v", s.Cfg.InstID, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}
