package main

import (
	"github.com/hibiken/asynq"

	pageJob "pagesmith-backend/internal/domains/page/job"
	publishJob "pagesmith-backend/internal/domains/publish/job"
	"pagesmith-backend/internal/shared"
	"pagesmith-backend/pkg/container"
)

// HandlerRegistry holds every task handler the worker serves.
type HandlerRegistry struct {
	generatePages *pageJob.GeneratePagesHandler
	publishPages  *publishJob.PublishPagesHandler
	autoPublish   *publishJob.AutoPublishHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		generatePages: c.GeneratePagesJob,
		publishPages:  c.PublishPagesJob,
		autoPublish:   c.AutoPublishJob,
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeGeneratePages, h.generatePages.ProcessTask)
	mux.HandleFunc(shared.TypePublishPages, h.publishPages.ProcessTask)
	mux.HandleFunc(shared.TypeAutoPublish, h.autoPublish.ProcessTask)
}
