package main

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"pagesmith-backend/internal/infrastructure/queue"
	"pagesmith-backend/pkg/container"
)

type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer builds the mux and starts serving in the background.
func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	jobs := c.Config.Jobs
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: jobs.RedisAddr, Password: c.Config.Redis.Password},
		asynq.Config{
			Queues:          queue.Queues(jobs),
			Concurrency:     jobs.Concurrency,
			ShutdownTimeout: jobs.ShutdownTimeout,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).Msg("[Asynq] task failed")
			}),
		},
	)

	go func() {
		log.Info().Int("concurrency", jobs.Concurrency).Msg("[Worker] starting")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("[Worker] failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks up to the configured timeout.
func (s *asynqServer) Shutdown() {
	log.Info().Msg("[Worker] shutting down")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] stopped")
}
