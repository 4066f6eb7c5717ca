// @title                       AdOnWheels Identity API
// @version                     1.0
// @description                 Registration, login and per-request authorization for Admin, Advertiser, Publisher and BodyShop accounts.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/adonwheels/identity-api/internal/app"
	"github.com/adonwheels/identity-api/internal/pkg/config"
	"github.com/adonwheels/identity-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.New(logger.Options{Service: "identity-api"}).Fatal().Err(err).Msg("load configuration")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "identity-api",
	})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialise application")
	}

	runErr := a.Run(ctx)
	if runErr != nil {
		log.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := a.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}

	if runErr != nil {
		os.Exit(1)
	}
}
