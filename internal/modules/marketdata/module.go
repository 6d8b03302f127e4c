package marketdata

import (
	"context"

	"go.uber.org/fx"

	"gap_bot/internal/models"
	"gap_bot/internal/modules/marketdata/service"
)

func newBarsChan() chan models.Bar { return make(chan models.Bar, 1024) }

func asSendOnlyBars(ch chan models.Bar) chan<- models.Bar { return ch }

func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			newBarsChan,
			asSendOnlyBars,
			service.NewClient,
		),

		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, out chan<- models.Bar, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go c.StreamBars(ctx, out)
					return nil
				},
			})
		}),
	)
}
