package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pms/config"
	"pms/di"
	"pms/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	logger.InitLogger()

	cfg := config.Get()

	logger.Configure(cfg, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := di.InitializeWorker().Run(ctx); err != nil {
		log.Error().Err(err).Msg("Worker stopped")

		stop()
		os.Exit(1)
	}

	log.Info().Msg("Worker shut down.")
}
