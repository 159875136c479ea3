package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"roost/config"
	"roost/di"
	"roost/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	sweeper := di.InitializeSweeper()

	if len(os.Args) > 1 && os.Args[1] == "once" {
		if err := sweeper.RunOnce(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("sweep pass failed")
		}

		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper.Run(ctx)
}
