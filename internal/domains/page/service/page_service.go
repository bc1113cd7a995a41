package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	businessModel "pagesmith-backend/internal/domains/business/model"
	businessRepo "pagesmith-backend/internal/domains/business/repository"
	"pagesmith-backend/internal/domains/page/codec"
	"pagesmith-backend/internal/domains/page/freshness"
	"pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/render"
	pageRepo "pagesmith-backend/internal/domains/page/repository"
	"pagesmith-backend/internal/domains/page/synth"
	"pagesmith-backend/internal/domains/page/urlpath"
	"pagesmith-backend/internal/infrastructure/metrics"
	"pagesmith-backend/internal/shared/utils"
	"pagesmith-backend/pkg/logger"
)

const collisionHashLength = 6

type pageService struct {
	businesses businessRepo.RepositoryInterface
	pages      pageRepo.RepositoryInterface
	synth      ContentSynthesizer
	renderer   Renderer
	workers    int
	now        func() time.Time
}

type Option func(*pageService)

// WithClock fixes the generation clock.
func WithClock(now func() time.Time) Option {
	return func(s *pageService) { s.now = now }
}

// WithWorkers bounds how many intents synthesize concurrently.
func WithWorkers(n int) Option {
	return func(s *pageService) { s.workers = n }
}

func NewService(
	businesses businessRepo.RepositoryInterface,
	pages pageRepo.RepositoryInterface,
	synthesizer ContentSynthesizer,
	renderer Renderer,
	opts ...Option,
) ServiceInterface {
	s := &pageService{
		businesses: businesses,
		pages:      pages,
		synth:      synthesizer,
		renderer:   renderer,
		workers:    model.IntentCount,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ========================================
// GENERATE PAGES FOR UPDATE
// ========================================

// draft is one intent's page before it is stored.
type draft struct {
	intent  model.Intent
	content synth.Content
	place   urlpath.Result
	err     error
}

func (s *pageService) GeneratePages(ctx context.Context, updateID uuid.UUID) (*model.GenerateResult, error) {
	update, err := s.businesses.GetUpdate(ctx, updateID)
	if err != nil {
		if errors.Is(err, businessModel.ErrUpdateNotFound) {
			return nil, model.NewUpdateNotFound(updateID.String())
		}
		return nil, fmt.Errorf("load update: %w", err)
	}

	business, err := s.loadBusiness(ctx, update.BusinessID)
	if err != nil {
		return nil, err
	}

	if err := urlpath.ValidateBusiness(business); err != nil {
		s.setUpdateStatus(ctx, updateID, businessModel.UpdateStatusFailed)
		return nil, err
	}

	now := s.now()
	tags := freshness.Tag(update.Content, now)
	update.Tags = tags.Tags
	expires := tags.ExpiresAt
	update.TagsExpireAt = &expires

	drafts := s.draftAll(ctx, business, update, now)

	result := &model.GenerateResult{BatchID: uuid.New()}
	usedPaths := make(map[string]model.Intent, len(drafts))
	stored := 0

	for _, d := range drafts {
		if d.err != nil {
			result.Pages = append(result.Pages, model.PageSummary{Intent: d.intent, Error: d.err.Error()})
			continue
		}

		place, err := s.resolveCollision(ctx, business, update.ID, d.intent, d.place, usedPaths)
		if err != nil {
			result.Pages = append(result.Pages, model.PageSummary{Intent: d.intent, Error: err.Error()})
			continue
		}
		usedPaths[place.FilePath] = d.intent

		page, err := s.store(ctx, business, update, d.intent, d.content, place, result.BatchID, now)
		if err != nil {
			logger.ErrorFields("failed to store page", err, map[string]interface{}{
				"update_id": updateID.String(),
				"intent":    string(d.intent),
			})
			result.Pages = append(result.Pages, model.PageSummary{Intent: d.intent, FilePath: place.FilePath, Error: err.Error()})
			continue
		}

		summary := page.ToSummary()
		summary.Source = d.content.Source
		result.Pages = append(result.Pages, summary)
		metrics.RecordPageGenerated(string(d.intent), d.content.Source)
		stored++
	}

	if stored == 0 {
		s.setUpdateStatus(ctx, updateID, businessModel.UpdateStatusFailed)
		return nil, model.NewSavePageError(errors.New("no page could be stored"))
	}
	s.setUpdateStatus(ctx, updateID, businessModel.UpdateStatusProcessed)

	logger.Info("pages generated", map[string]interface{}{
		"update_id": updateID.String(),
		"batch_id":  result.BatchID.String(),
		"stored":    stored,
	})
	return result, nil
}

// draftAll synthesizes and places every intent concurrently. A failing
// intent is recorded on its draft and does not stop the others.
func (s *pageService) draftAll(ctx context.Context, b *businessModel.Business, u *businessModel.Update, now time.Time) []draft {
	drafts := make([]draft, len(model.AllIntents))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, intent := range model.AllIntents {
		i, intent := i, intent
		g.Go(func() error {
			d := draft{intent: intent}
			d.content = s.synth.Synthesize(ctx, b, u, intent)
			d.place, d.err = urlpath.Build(urlpath.Input{
				UpdateText: u.Content,
				Intent:     intent,
				Business:   b,
				AISlug:     d.content.Slug,
				Now:        now,
			})
			drafts[i] = d
			return nil
		})
	}
	_ = g.Wait()

	return drafts
}

// resolveCollision appends a short hash to the slug when the path is
// already owned by another business, by a different update or by another
// intent of this run.
func (s *pageService) resolveCollision(
	ctx context.Context,
	b *businessModel.Business,
	updateID uuid.UUID,
	intent model.Intent,
	place urlpath.Result,
	used map[string]model.Intent,
) (urlpath.Result, error) {
	_, takenInRun := used[place.FilePath]
	if !takenInRun {
		free, err := s.pathFree(ctx, b.ID, &updateID, place.FilePath)
		if err != nil {
			return place, err
		}
		if free {
			return place, nil
		}
	}
	return withSuffix(b, intent, place, collisionHash(updateID, intent)), nil
}

// pathFree reports whether the page at filePath may be overwritten by the
// given owner. updateID is nil for profile pages.
func (s *pageService) pathFree(ctx context.Context, businessID uuid.UUID, updateID *uuid.UUID, filePath string) (bool, error) {
	existing, err := s.pages.FindActiveByPath(ctx, filePath)
	if err != nil {
		return false, model.NewSavePageError(err)
	}
	if existing == nil {
		return true, nil
	}
	if existing.BusinessID != businessID {
		return false, nil
	}
	if updateID == nil || existing.UpdateID == nil {
		return updateID == nil && existing.UpdateID == nil, nil
	}
	return *existing.UpdateID == *updateID, nil
}

func withSuffix(b *businessModel.Business, intent model.Intent, place urlpath.Result, suffix string) urlpath.Result {
	slug := utils.TruncateSlug(place.Slug, urlpath.MaxSlugLength-len(suffix)-1) + "-" + suffix
	return urlpath.Result{
		FilePath:    urlpath.FilePath(b, intent, slug),
		Slug:        slug,
		PageVariant: place.PageVariant,
	}
}

// collisionHash is keyed by the update, or by the business for profile pages.
func collisionHash(owner uuid.UUID, intent model.Intent) string {
	sum := sha256.Sum256([]byte(owner.String() + "|" + string(intent)))
	return hex.EncodeToString(sum[:])[:collisionHashLength]
}

func (s *pageService) store(
	ctx context.Context,
	b *businessModel.Business,
	u *businessModel.Update,
	intent model.Intent,
	content synth.Content,
	place urlpath.Result,
	batchID uuid.UUID,
	now time.Time,
) (*model.Page, error) {
	pd := model.PageData{
		Business: *b,
		Update:   u,
		SEO:      model.SEO{Title: content.Title, Description: content.Description},
		Intent: model.IntentInfo{
			Type:        intent,
			FilePath:    place.FilePath,
			Slug:        place.Slug,
			PageVariant: place.PageVariant,
		},
	}

	page, err := s.assemble(pd, now)
	if err != nil {
		return nil, err
	}
	page.BusinessID = b.ID
	page.GenerationBatchID = batchID
	page.DynamicTags = []string{}
	if u != nil {
		id := u.ID
		page.UpdateID = &id
		if u.Tags != nil {
			page.DynamicTags = u.Tags
		}
		page.TagsExpireAt = u.TagsExpireAt
	}

	if err := s.pages.Upsert(ctx, page); err != nil {
		return nil, model.NewSavePageError(err)
	}
	return page, nil
}

// assemble compresses the page data and measures the rendered document.
func (s *pageService) assemble(pd model.PageData, now time.Time) (*model.Page, error) {
	data, err := codec.Marshal(pd)
	if err != nil {
		return nil, model.NewSavePageError(fmt.Errorf("encode page data: %w", err))
	}

	html, err := s.renderer.Render(pd.Intent.Type, pd, render.Timestamps{Published: now, Modified: now})
	if err != nil {
		return nil, err
	}

	return &model.Page{
		FilePath:     pd.Intent.FilePath,
		Slug:         pd.Intent.Slug,
		Intent:       pd.Intent.Type,
		PageVariant:  pd.Intent.PageVariant,
		Title:        pd.SEO.Title,
		PageData:     data,
		SizeEstimate: len(html),
	}, nil
}

// ========================================
// PROFILE PAGE
// ========================================

func (s *pageService) GenerateProfilePage(ctx context.Context, businessID uuid.UUID) (*model.PageSummary, error) {
	business, err := s.loadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := urlpath.ValidateBusiness(business); err != nil {
		return nil, err
	}

	intent := model.IntentDirect
	content := s.synth.Synthesize(ctx, business, nil, intent)
	place := urlpath.Result{
		FilePath:    urlpath.FilePath(business, intent, model.ProfileSlug),
		Slug:        model.ProfileSlug,
		PageVariant: model.ProfileVariant,
	}
	free, err := s.pathFree(ctx, business.ID, nil, place.FilePath)
	if err != nil {
		return nil, err
	}
	if !free {
		place = withSuffix(business, intent, place, collisionHash(business.ID, intent))
	}

	page, err := s.store(ctx, business, nil, intent, content, place, uuid.New(), s.now())
	if err != nil {
		return nil, err
	}
	metrics.RecordPageGenerated(string(intent), content.Source)

	summary := page.ToSummary()
	summary.Source = content.Source
	return &summary, nil
}

// ========================================
// PREVIEW
// ========================================

func (s *pageService) Preview(ctx context.Context, pageID uuid.UUID) ([]byte, error) {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewPageNotFound(pageID.String())
		}
		return nil, fmt.Errorf("load page: %w", err)
	}

	pd, err := codec.Unmarshal(page.PageData)
	if err != nil {
		return nil, err
	}

	return s.renderer.Render(page.Intent, pd, render.Timestamps{
		Published: page.CreatedAt,
		Modified:  page.LastModified(),
	})
}

// ========================================
// HELPERS
// ========================================

func (s *pageService) loadBusiness(ctx context.Context, id uuid.UUID) (*businessModel.Business, error) {
	b, err := s.businesses.GetBusiness(ctx, id)
	if err != nil {
		if errors.Is(err, businessModel.ErrBusinessNotFound) {
			return nil, model.NewBusinessNotFound(id.String())
		}
		return nil, fmt.Errorf("load business: %w", err)
	}
	return b, nil
}

func (s *pageService) setUpdateStatus(ctx context.Context, id uuid.UUID, status string) {
	if err := s.businesses.SetUpdateStatus(ctx, id, status); err != nil {
		logger.ErrorFields("failed to set update status", err, map[string]interface{}{
			"update_id": id.String(),
			"status":    status,
		})
	}
}
