package main

import (
	"context"

	"roost/config"
	"roost/di"
	"roost/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	// The sweeper runs in-process alongside the API. Deployments that prefer
	// a dedicated worker can run cmd/sweeper instead.
	sweeper := di.InitializeSweeper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sweeper.Run(ctx)

	http := di.InitializeService()
	http.Serve()
}
