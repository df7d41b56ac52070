package main

import (
	"log"

	"FoodExpiryTracker/internal/bootstrap"
	pkg "FoodExpiryTracker/pkg/routes"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	if err := bootstrap.Loadenv(); err != nil {
		log.Fatal(err)
	}

	app := fx.New(
		pkg.EchoModules,
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
	)

	app.Run()
}
