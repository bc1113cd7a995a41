package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"pagesmith-backend/internal/config"
	"pagesmith-backend/internal/shared"
	"pagesmith-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(jobConfig config.JobConfig, redisPassword string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: jobConfig.RedisAddr, Password: redisPassword},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// ================================================
// AUTO PUBLISH (AUTO_PUBLISH_CRON)
// ================================================

// RegisterAutoPublish schedules a publish_all run. It returns an empty entry
// ID when no cron spec is configured.
func (s *Scheduler) RegisterAutoPublish() (string, error) {
	spec := s.jobConfig.AutoPublishCron
	if spec == "" {
		logger.Info("Auto publish disabled", map[string]interface{}{})
		return "", nil
	}

	entryID, err := s.scheduler.Register(
		spec,
		asynq.NewTask(shared.TypeAutoPublish, nil),
		asynq.Queue(s.jobConfig.PublishQueue),
		asynq.MaxRetry(0),
		asynq.Timeout(s.jobConfig.TaskTimeout),
		// A slow run must not overlap the next tick.
		asynq.Unique(s.jobConfig.TaskTimeout),
	)
	if err != nil {
		logger.Error("Failed to register AutoPublish job", err)
		return "", fmt.Errorf("register auto publish %q: %w", spec, err)
	}

	logger.Info("Registered AutoPublish", map[string]interface{}{
		"cron":  spec,
		"queue": s.jobConfig.PublishQueue,
		"entry": entryID,
	})
	return entryID, nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
