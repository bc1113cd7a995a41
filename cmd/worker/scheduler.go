package main

import (
	"github.com/rs/zerolog/log"

	"pagesmith-backend/internal/infrastructure/queue"
	"pagesmith-backend/pkg/container"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(c *container.Container) *asynqScheduler {
	scheduler := queue.NewScheduler(c.Config.Jobs, c.Config.Redis.Password)

	entryID, err := scheduler.RegisterAutoPublish()
	if err != nil {
		log.Fatal().Err(err).Msg("[Scheduler] failed to register")
	}
	if entryID == "" {
		// Nothing to run; Run would only idle.
		return &asynqScheduler{}
	}

	go func() {
		log.Info().Msg("[Scheduler] starting")
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("[Scheduler] failed")
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	if s.Scheduler == nil {
		return
	}
	log.Info().Msg("[Scheduler] shutting down")
	s.Scheduler.Shutdown()
	log.Info().Msg("[Scheduler] stopped")
}
