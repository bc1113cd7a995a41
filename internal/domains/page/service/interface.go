package service

import (
	"context"

	"github.com/google/uuid"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/render"
	"pagesmith-backend/internal/domains/page/synth"
)

type ServiceInterface interface {
	// GeneratePages builds one page per intent for an update.
	GeneratePages(ctx context.Context, updateID uuid.UUID) (*model.GenerateResult, error)

	// GenerateProfilePage builds the standalone business page at .../about.
	GenerateProfilePage(ctx context.Context, businessID uuid.UUID) (*model.PageSummary, error)

	// Preview renders a stored page without publishing it.
	Preview(ctx context.Context, pageID uuid.UUID) ([]byte, error)
}

// ContentSynthesizer produces titles and descriptions. It never fails.
type ContentSynthesizer interface {
	Synthesize(ctx context.Context, b *businessModel.Business, u *businessModel.Update, intent model.Intent) synth.Content
}

type Renderer interface {
	Render(intent model.Intent, pd model.PageData, ts render.Timestamps) ([]byte, error)
}
