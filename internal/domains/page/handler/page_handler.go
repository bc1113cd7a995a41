package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/service"
	"pagesmith-backend/internal/shared"
	"pagesmith-backend/internal/shared/response"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Handler struct {
	service service.ServiceInterface
	queue   TaskEnqueuer
	// queueName receives async generation tasks.
	queueName string
}

func NewHandler(service service.ServiceInterface, queue TaskEnqueuer, queueName string) *Handler {
	return &Handler{service: service, queue: queue, queueName: queueName}
}

// GenerateForUpdate handles POST /api/v1/updates/:id/generate[?async=true]
func (h *Handler) GenerateForUpdate(c *gin.Context) {
	updateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid update ID format", err.Error())
		return
	}

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		h.enqueueGenerate(c, updateID)
		return
	}

	res, err := h.service.GeneratePages(c.Request.Context(), updateID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Pages generated successfully", res)
}

func (h *Handler) enqueueGenerate(c *gin.Context, updateID uuid.UUID) {
	if h.queue == nil {
		response.Error(c, http.StatusServiceUnavailable, "Background queue is not configured", nil)
		return
	}

	payload, err := json.Marshal(shared.GeneratePagesPayload{UpdateID: updateID.String()})
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	info, err := h.queue.EnqueueContext(c.Request.Context(),
		asynq.NewTask(shared.TypeGeneratePages, payload),
		asynq.Queue(h.queueName),
		asynq.MaxRetry(0),
	)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to enqueue generation", err.Error())
		return
	}

	response.Success(c, http.StatusAccepted, "Generation queued", gin.H{"task_id": info.ID, "update_id": updateID})
}

// GenerateProfilePage handles POST /api/v1/businesses/:id/profile-page
func (h *Handler) GenerateProfilePage(c *gin.Context) {
	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid business ID format", err.Error())
		return
	}

	summary, err := h.service.GenerateProfilePage(c.Request.Context(), businessID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Profile page generated successfully", summary)
}

// Preview handles GET /api/v1/pages/:id/preview
func (h *Handler) Preview(c *gin.Context) {
	pageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid page ID format", err.Error())
		return
	}

	html, err := h.service.Preview(c.Request.Context(), pageID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("X-Robots-Tag", "noindex")
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status, message, code := model.MapErrorToHTTP(err)
	response.ErrorWithCode(c, status, code, message, nil)
}
