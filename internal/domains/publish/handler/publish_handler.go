package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"pagesmith-backend/internal/domains/publish/model"
	"pagesmith-backend/internal/domains/publish/service"
	"pagesmith-backend/internal/shared"
	"pagesmith-backend/internal/shared/response"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Handler struct {
	service   service.ServiceInterface
	queue     TaskEnqueuer
	queueName string
}

func NewHandler(service service.ServiceInterface, queue TaskEnqueuer, queueName string) *Handler {
	return &Handler{service: service, queue: queue, queueName: queueName}
}

// Publish handles POST /api/v1/publish[?async=true]
func (h *Handler) Publish(c *gin.Context) {
	var req model.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid publish selector", err.Error())
		return
	}

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		h.enqueuePublish(c, req)
		return
	}

	report, err := h.service.Publish(c.Request.Context(), req)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Publish completed", report)
}

func (h *Handler) enqueuePublish(c *gin.Context, req model.Request) {
	if h.queue == nil {
		response.Error(c, http.StatusServiceUnavailable, "Background queue is not configured", nil)
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	info, err := h.queue.EnqueueContext(c.Request.Context(),
		asynq.NewTask(shared.TypePublishPages, payload),
		asynq.Queue(h.queueName),
		asynq.MaxRetry(0),
	)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to enqueue publish", err.Error())
		return
	}

	response.Success(c, http.StatusAccepted, "Publish queued", gin.H{"task_id": info.ID})
}
