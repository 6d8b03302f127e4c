package main

import (
	"context"
	"log"

	"gap_bot/internal/modules/config"
	"gap_bot/internal/modules/gateway"
	"gap_bot/internal/modules/health"
	"gap_bot/internal/modules/marketdata"
	"gap_bot/internal/modules/postgres"
	"gap_bot/internal/modules/strategy"
	"gap_bot/internal/runner"
	"gap_bot/pkg/logger"
	"gap_bot/pkg/tracing"

	"go.uber.org/fx"
)

const serviceName = "gap_bot"

func main() {
	logger.Init()
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	_, closeTracer, err := tracing.InitTracer(tracing.Config{Host: "localhost", Port: 6831})
	if err != nil {
		logger.Error("init tracer: %v", err)
	} else {
		defer closeTracer()
	}

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		health.Module(),
		gateway.Module(),
		marketdata.Module(),
		strategy.Module(),
		runner.Module(),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	<-app.Wait()
}
