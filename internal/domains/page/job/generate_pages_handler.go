package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/service"
	"pagesmith-backend/internal/shared"
)

// GeneratePagesHandler runs page generation for a queued update.
type GeneratePagesHandler struct {
	service service.ServiceInterface
}

func NewGeneratePagesHandler(service service.ServiceInterface) *GeneratePagesHandler {
	return &GeneratePagesHandler{service: service}
}

func (h *GeneratePagesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.GeneratePagesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal GeneratePages payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	updateID, err := uuid.Parse(payload.UpdateID)
	if err != nil {
		return fmt.Errorf("invalid update id %q: %w", payload.UpdateID, asynq.SkipRetry)
	}

	res, err := h.service.GeneratePages(ctx, updateID)
	if err != nil {
		log.Error().Err(err).Str("update_id", payload.UpdateID).Msg("Failed to generate pages")
		// Input errors will not succeed on retry.
		if model.IsMissingURLFields(err) || model.IsNotFound(err) {
			return fmt.Errorf("generate pages: %w: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("generate pages: %w", err)
	}

	log.Info().
		Str("update_id", payload.UpdateID).
		Str("batch_id", res.BatchID.String()).
		Int("pages", len(res.Pages)).
		Msg("Pages generated")
	return nil
}
