package strategy

import (
	"go.uber.org/fx"

	"gap_bot/internal/modules/config"
	"gap_bot/internal/modules/strategy/service"
)

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			service.NewBarBuffer, // -> *service.BarBuffer
			func(cfg *config.Config) *service.Matcher {
				return service.NewMatcher(cfg.BarInterval())
			},
			func(cfg *config.Config) service.SessionAverage {
				return service.NewSessionEMA(cfg.EMAPeriod)
			},
		),
	)
}
