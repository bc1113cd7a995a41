package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pagesmith-backend/internal/domains/page/model"
)

// Selector picks unpublished pages. Exactly one field is expected to be set.
type Selector struct {
	IDs     []uuid.UUID
	BatchID *uuid.UUID
	All     bool
}

// PublishedPath is a live page as listed in the sitemap.
type PublishedPath struct {
	FilePath     string
	LastModified time.Time
}

type RepositoryInterface interface {
	// Upsert inserts the page or, when an active page of the same business
	// already owns file_path, overwrites it in place. ID, CreatedAt and
	// UpdatedAt are filled from the stored row. model.ErrPathOwned is
	// returned when another business owns the path.
	Upsert(ctx context.Context, page *model.Page) error

	// FindActiveByPath returns the active page at filePath, whichever
	// business owns it, or nil, nil when the path is free.
	FindActiveByPath(ctx context.Context, filePath string) (*model.Page, error)

	// GetByID returns model.ErrNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Page, error)

	// ListUnpublishedIDs resolves a selector to active, unpublished page ids.
	ListUnpublishedIDs(ctx context.Context, sel Selector) ([]uuid.UUID, error)

	// MarkPublished flips published for rows that are still unpublished and
	// returns only the rows this call flipped.
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) ([]model.Page, error)

	// ListPublished returns every active published page, newest first.
	ListPublished(ctx context.Context) ([]PublishedPath, error)
}
