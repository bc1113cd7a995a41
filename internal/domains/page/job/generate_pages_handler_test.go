package job

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith-backend/internal/domains/page/model"
)

type stubService struct {
	err   error
	calls []uuid.UUID
}

func (s *stubService) GeneratePages(_ context.Context, id uuid.UUID) (*model.GenerateResult, error) {
	s.calls = append(s.calls, id)
	if s.err != nil {
		return nil, s.err
	}
	return &model.GenerateResult{BatchID: uuid.New()}, nil
}

func (s *stubService) GenerateProfilePage(context.Context, uuid.UUID) (*model.PageSummary, error) {
	return nil, nil
}

func (s *stubService) Preview(context.Context, uuid.UUID) ([]byte, error) { return nil, nil }

func TestGeneratePagesTask(t *testing.T) {
	svc := &stubService{}
	h := NewGeneratePagesHandler(svc)
	id := uuid.New()

	err := h.ProcessTask(context.Background(), asynq.NewTask("page:generate", []byte(`{"update_id":"`+id.String()+`"}`)))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, svc.calls)
}

func TestGeneratePagesTaskSkipsRetryOnBadInput(t *testing.T) {
	h := NewGeneratePagesHandler(&stubService{})

	err := h.ProcessTask(context.Background(), asynq.NewTask("page:generate", []byte(`{`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = h.ProcessTask(context.Background(), asynq.NewTask("page:generate", []byte(`{"update_id":"nope"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	h = NewGeneratePagesHandler(&stubService{err: model.NewMissingURLFields([]string{"address_city"})})
	err = h.ProcessTask(context.Background(), asynq.NewTask("page:generate", []byte(`{"update_id":"`+uuid.NewString()+`"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestGeneratePagesTaskRetriesStoreErrors(t *testing.T) {
	h := NewGeneratePagesHandler(&stubService{err: model.NewSavePageError(errors.New("db down"))})

	err := h.ProcessTask(context.Background(), asynq.NewTask("page:generate", []byte(`{"update_id":"`+uuid.NewString()+`"}`)))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
