package job

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith-backend/internal/domains/publish/model"
	"pagesmith-backend/internal/shared"
)

type stubService struct {
	calls []model.Request
	err   error
}

func (s *stubService) Publish(_ context.Context, req model.Request) (*model.Report, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return model.EmptyReport(), nil
}

func TestPublishPagesHandler(t *testing.T) {
	svc := &stubService{}
	h := NewPublishPagesHandler(svc)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypePublishPages, []byte(`{"publish_all":true}`)))
	require.NoError(t, err)
	require.Len(t, svc.calls, 1)
	assert.True(t, svc.calls[0].PublishAll)
}

func TestPublishPagesHandlerSkipsRetryOnBadPayload(t *testing.T) {
	h := NewPublishPagesHandler(&stubService{})

	for _, payload := range []string{`not json`, `{}`, `{"batch_id":"x"}`} {
		err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypePublishPages, []byte(payload)))
		assert.ErrorIs(t, err, asynq.SkipRetry, payload)
	}
}

func TestPublishPagesHandlerRetriesInfraErrors(t *testing.T) {
	h := NewPublishPagesHandler(&stubService{err: errors.New("db down")})

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypePublishPages, []byte(`{"publish_all":true}`)))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestAutoPublishHandler(t *testing.T) {
	svc := &stubService{}
	h := NewAutoPublishHandler(svc)

	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeAutoPublish, nil)))
	require.Len(t, svc.calls, 1)
	assert.Equal(t, model.Request{PublishAll: true}, svc.calls[0])
}
