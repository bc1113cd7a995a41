package repository

import (
	"context"

	"github.com/google/uuid"

	"pagesmith-backend/internal/domains/business/model"
)

// RepositoryInterface is the read side of the account subsystem's data
// plus the update status write-back.
type RepositoryInterface interface {
	// GetBusiness returns model.ErrBusinessNotFound when no row matches.
	GetBusiness(ctx context.Context, id uuid.UUID) (*model.Business, error)

	// GetUpdate returns model.ErrUpdateNotFound when no row matches.
	GetUpdate(ctx context.Context, id uuid.UUID) (*model.Update, error)

	// SetUpdateStatus records the processing state of an update.
	SetUpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
