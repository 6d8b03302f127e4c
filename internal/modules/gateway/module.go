package gateway

import (
	"go.uber.org/fx"

	"gap_bot/internal/modules/gateway/service"
)

func Module() fx.Option {
	return fx.Module("gateway",
		fx.Provide(
			service.NewClient,
		),
	)
}
