package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"pagesmith-backend/internal/domains/publish/model"
	"pagesmith-backend/internal/domains/publish/service"
)

// PublishPagesHandler publishes a queued selector.
type PublishPagesHandler struct {
	service service.ServiceInterface
}

func NewPublishPagesHandler(service service.ServiceInterface) *PublishPagesHandler {
	return &PublishPagesHandler{service: service}
}

func (h *PublishPagesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var req model.Request
	if err := json.Unmarshal(task.Payload(), &req); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal PublishPages payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid selector: %w: %w", err, asynq.SkipRetry)
	}

	return runPublish(ctx, h.service, req, "publish")
}

// AutoPublishHandler publishes every pending page on a schedule.
type AutoPublishHandler struct {
	service service.ServiceInterface
}

func NewAutoPublishHandler(service service.ServiceInterface) *AutoPublishHandler {
	return &AutoPublishHandler{service: service}
}

func (h *AutoPublishHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	return runPublish(ctx, h.service, model.Request{PublishAll: true}, "auto_publish")
}

func runPublish(ctx context.Context, svc service.ServiceInterface, req model.Request, source string) error {
	report, err := svc.Publish(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("source", source).Msg("Publish failed")
		if errors.Is(err, model.ErrSelectorCount) {
			return fmt.Errorf("publish: %w: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("publish: %w", err)
	}

	log.Info().
		Str("source", source).
		Int("published", report.Published.Total).
		Int("static_failed", report.StaticFileGeneration.Failed).
		Int("purge_failed", report.CacheInvalidation.Failed).
		Msg("Publish completed")
	return nil
}
