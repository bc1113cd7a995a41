// cmd/worker/main.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"pagesmith-backend/pkg/container"
	"pagesmith-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env, os.Getenv("LOG_LEVEL"))

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] failed to initialize")
	}
	defer c.Cleanup()

	handlers := initializeHandlers(c)

	srv := setupAsynqServer(c, handlers)

	scheduler := setupScheduler(c)

	if err := startServices(c); err != nil {
		log.Fatal().Err(err).Msg("[Startup] health check failed")
	}

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] gracefully stopping")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("[Shutdown] stopped")
}
