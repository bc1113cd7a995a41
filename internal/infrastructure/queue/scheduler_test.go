package queue

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith-backend/internal/config"
)

func jobConfig(t *testing.T, cron string) config.JobConfig {
	t.Helper()
	mr := miniredis.RunT(t)
	return config.JobConfig{
		RedisAddr:       mr.Addr(),
		AutoPublishCron: cron,
		PublishQueue:    "critical",
		TaskTimeout:     time.Minute,
	}
}

func TestRegisterAutoPublishDisabled(t *testing.T) {
	s := NewScheduler(jobConfig(t, ""), "")
	id, err := s.RegisterAutoPublish()
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestRegisterAutoPublish(t *testing.T) {
	s := NewScheduler(jobConfig(t, "*/15 * * * *"), "")
	id, err := s.RegisterAutoPublish()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestRegisterAutoPublishBadCron(t *testing.T) {
	s := NewScheduler(jobConfig(t, "every so often"), "")
	_, err := s.RegisterAutoPublish()
	assert.Error(t, err)
}

func TestQueues(t *testing.T) {
	q := Queues(config.JobConfig{GenerateQueue: "default", PublishQueue: "publishing"})
	assert.Equal(t, 6, q["critical"])
	assert.Equal(t, 3, q["publishing"])
	assert.Len(t, q, 4)
}
