package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	pageModel "pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/render"
	pageRepo "pagesmith-backend/internal/domains/page/repository"
	"pagesmith-backend/internal/domains/publish/model"
)

type ServiceInterface interface {
	// Publish flips, renders, uploads and purges the selected pages.
	// Only datastore failures are returned as errors; propagation
	// failures are recorded on the report.
	Publish(ctx context.Context, req model.Request) (*model.Report, error)
}

// PageStore is the slice of the page repository publishing needs.
type PageStore interface {
	ListUnpublishedIDs(ctx context.Context, sel pageRepo.Selector) ([]uuid.UUID, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) ([]pageModel.Page, error)
	ListPublished(ctx context.Context) ([]pageRepo.PublishedPath, error)
}

type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

type Renderer interface {
	Render(intent pageModel.Intent, pd pageModel.PageData, ts render.Timestamps) ([]byte, error)
}

// BusinessCache drops cached business records once their pages go live.
type BusinessCache interface {
	InvalidateBusiness(ctx context.Context, id uuid.UUID) error
}
