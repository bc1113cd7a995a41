package queue

import (
	"github.com/hibiken/asynq"

	"pagesmith-backend/internal/config"
)

// NewClient opens the task client used by the API to enqueue work.
func NewClient(jobConfig config.JobConfig, redisPassword string) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: jobConfig.RedisAddr, Password: redisPassword})
}

// Queues returns the worker queue priorities.
func Queues(jobConfig config.JobConfig) map[string]int {
	queues := map[string]int{
		"critical": 6,
		"default":  3,
		"low":      1,
	}
	// Custom queue names still get served.
	for _, name := range []string{jobConfig.GenerateQueue, jobConfig.PublishQueue} {
		if _, ok := queues[name]; !ok && name != "" {
			queues[name] = 3
		}
	}
	return queues
}
