package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/codec"
	"pagesmith-backend/internal/domains/page/freshness"
	"pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/render"
	pageRepo "pagesmith-backend/internal/domains/page/repository"
	"pagesmith-backend/internal/domains/page/synth"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

// ========================================
// FAKES
// ========================================

type fakeBusinessRepo struct {
	mu         sync.Mutex
	businesses map[uuid.UUID]*businessModel.Business
	updates    map[uuid.UUID]*businessModel.Update
	statuses   map[uuid.UUID]string
}

func (r *fakeBusinessRepo) GetBusiness(_ context.Context, id uuid.UUID) (*businessModel.Business, error) {
	b, ok := r.businesses[id]
	if !ok {
		return nil, businessModel.ErrBusinessNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBusinessRepo) GetUpdate(_ context.Context, id uuid.UUID) (*businessModel.Update, error) {
	u, ok := r.updates[id]
	if !ok {
		return nil, businessModel.ErrUpdateNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeBusinessRepo) SetUpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	return nil
}

type fakePageRepo struct {
	mu      sync.Mutex
	pages   map[uuid.UUID]*model.Page
	failAll bool
}

func newFakePageRepo() *fakePageRepo {
	return &fakePageRepo{pages: make(map[uuid.UUID]*model.Page)}
}

func (r *fakePageRepo) Upsert(_ context.Context, p *model.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errors.New("connection reset")
	}
	if p.DynamicTags == nil {
		return errors.New(`null value in column "dynamic_tags" violates not-null constraint`)
	}
	for _, existing := range r.pages {
		if existing.FilePath == p.FilePath && !existing.Expired {
			if existing.BusinessID != p.BusinessID {
				return model.ErrPathOwned
			}
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			break
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
		p.CreatedAt = fixedNow
	}
	p.UpdatedAt = fixedNow
	cp := *p
	r.pages[p.ID] = &cp
	return nil
}

func (r *fakePageRepo) FindActiveByPath(_ context.Context, filePath string) (*model.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pages {
		if p.FilePath == filePath && !p.Expired {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePageRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePageRepo) ListUnpublishedIDs(context.Context, pageRepo.Selector) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *fakePageRepo) MarkPublished(context.Context, []uuid.UUID, time.Time) ([]model.Page, error) {
	return nil, nil
}

func (r *fakePageRepo) ListPublished(context.Context) ([]pageRepo.PublishedPath, error) {
	return nil, nil
}

// fixedSynth returns the same AI content for every intent.
type fixedSynth struct{ content synth.Content }

func (f fixedSynth) Synthesize(context.Context, *businessModel.Business, *businessModel.Update, model.Intent) synth.Content {
	return f.content
}

// ========================================
// FIXTURES
// ========================================

type fixture struct {
	svc        ServiceInterface
	businesses *fakeBusinessRepo
	pages      *fakePageRepo
	business   *businessModel.Business
	update     *businessModel.Update
}

func newFixture(t *testing.T, synthesizer ContentSynthesizer) *fixture {
	t.Helper()

	b := &businessModel.Business{
		ID:       uuid.New(),
		Name:     "Blue Door Cafe",
		Category: "food-dining",
		Address:  businessModel.Address{Street: "100 Pike St", City: "Seattle", Region: "WA"},
		Phone:    "(206) 555-0100",
		Services: []string{"Wood Fired Pizza"},
		FAQs:     []businessModel.FAQ{{Question: "Do you deliver?", Answer: "Within 3 miles."}},
	}
	u := &businessModel.Update{
		ID:         uuid.New(),
		BusinessID: b.ID,
		Content:    "50% off all services today only!",
		CreatedAt:  fixedNow.Add(-time.Hour),
		Status:     businessModel.UpdateStatusPending,
	}

	businesses := &fakeBusinessRepo{
		businesses: map[uuid.UUID]*businessModel.Business{b.ID: b},
		updates:    map[uuid.UUID]*businessModel.Update{u.ID: u},
		statuses:   make(map[uuid.UUID]string),
	}
	pages := newFakePageRepo()

	engine, err := render.NewEngine(render.Site{Name: "Local Updates", BaseURL: "https://pages.example.com"},
		render.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	if synthesizer == nil {
		synthesizer = synth.NewSynthesizer(nil)
	}
	svc := NewService(businesses, pages, synthesizer, engine, WithClock(func() time.Time { return fixedNow }))

	return &fixture{svc: svc, businesses: businesses, pages: pages, business: b, update: u}
}

// ========================================
// GENERATE PAGES
// ========================================

func TestGeneratePagesOnePerIntent(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.GeneratePages(context.Background(), f.update.ID)
	require.NoError(t, err)

	require.Len(t, res.Pages, model.IntentCount)
	assert.NotEqual(t, uuid.Nil, res.BatchID)
	assert.Len(t, f.pages.pages, model.IntentCount)
	assert.Equal(t, businessModel.UpdateStatusProcessed, f.businesses.statuses[f.update.ID])

	paths := make(map[string]bool)
	for i, p := range res.Pages {
		assert.Equal(t, model.AllIntents[i], p.Intent)
		assert.Empty(t, p.Error)
		assert.Equal(t, synth.SourceFallback, p.Source)
		assert.Contains(t, p.Tags, freshness.TagSpecialActive)
		assert.Contains(t, p.Tags, freshness.TagHappeningNow)
		assert.False(t, paths[p.FilePath], "duplicate path %s", p.FilePath)
		paths[p.FilePath] = true
	}

	for _, p := range f.pages.pages {
		assert.Equal(t, res.BatchID, p.GenerationBatchID)
		assert.Positive(t, p.SizeEstimate)
		require.NotNil(t, p.TagsExpireAt)
		assert.Equal(t, fixedNow.Add(24*time.Hour), *p.TagsExpireAt)

		pd, err := codec.Unmarshal(p.PageData)
		require.NoError(t, err)
		assert.Equal(t, p.FilePath, pd.Intent.FilePath)
		assert.Equal(t, f.update.Content, pd.Update.Content)
		assert.Equal(t, p.DynamicTags, pd.Update.Tags)
	}
}

func TestGeneratePagesMissingURLFields(t *testing.T) {
	f := newFixture(t, nil)
	f.business.Address.City = ""

	_, err := f.svc.GeneratePages(context.Background(), f.update.ID)
	require.Error(t, err)
	assert.True(t, model.IsMissingURLFields(err))
	assert.Contains(t, err.Error(), "address_city")
	assert.Empty(t, f.pages.pages)
	assert.Equal(t, businessModel.UpdateStatusFailed, f.businesses.statuses[f.update.ID])
}

func TestGeneratePagesUnknownUpdate(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GeneratePages(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
	assert.Equal(t, model.CodeUpdateNotFound, model.GetErrorCode(err))
}

func TestGeneratePagesRegenerateUpsertsInPlace(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.GeneratePages(ctx, f.update.ID)
	require.NoError(t, err)
	second, err := f.svc.GeneratePages(ctx, f.update.ID)
	require.NoError(t, err)

	assert.Len(t, f.pages.pages, model.IntentCount)
	for i := range first.Pages {
		assert.Equal(t, first.Pages[i].ID, second.Pages[i].ID)
		assert.Equal(t, first.Pages[i].FilePath, second.Pages[i].FilePath)
	}
}

func TestGeneratePagesCollisionWithOtherUpdate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.GeneratePages(ctx, f.update.ID)
	require.NoError(t, err)

	other := *f.update
	other.ID = uuid.New()
	f.businesses.updates[other.ID] = &other

	second, err := f.svc.GeneratePages(ctx, other.ID)
	require.NoError(t, err)

	assert.Len(t, f.pages.pages, 2*model.IntentCount)
	for i := range first.Pages {
		wantSuffix := "-" + collisionHash(other.ID, first.Pages[i].Intent)
		assert.NotEqual(t, first.Pages[i].FilePath, second.Pages[i].FilePath)
		assert.True(t, strings.HasSuffix(second.Pages[i].Slug, wantSuffix), second.Pages[i].Slug)
		assert.LessOrEqual(t, len(second.Pages[i].Slug), 50)
	}
}

func TestGeneratePagesCollisionWithOtherBusiness(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.GeneratePages(ctx, f.update.ID)
	require.NoError(t, err)

	rival := *f.business
	rival.ID = uuid.New()
	rival.Name = "Red Door Cafe"
	f.businesses.businesses[rival.ID] = &rival
	rivalUpdate := *f.update
	rivalUpdate.ID = uuid.New()
	rivalUpdate.BusinessID = rival.ID
	f.businesses.updates[rivalUpdate.ID] = &rivalUpdate

	second, err := f.svc.GeneratePages(ctx, rivalUpdate.ID)
	require.NoError(t, err)

	firstPaths := make(map[model.Intent]string)
	for _, p := range first.Pages {
		firstPaths[p.Intent] = p.FilePath
	}

	assert.Len(t, f.pages.pages, 2*model.IntentCount)
	for _, p := range second.Pages {
		require.Empty(t, p.Error, p.Intent)
		assert.NotEqual(t, firstPaths[p.Intent], p.FilePath, p.Intent)

		suffix := "-" + collisionHash(rivalUpdate.ID, p.Intent)
		if p.Intent.RoutesUnderBusiness() {
			assert.False(t, strings.HasSuffix(p.Slug, suffix), p.Slug)
		} else {
			assert.True(t, strings.HasSuffix(p.Slug, suffix), p.Slug)
		}
	}
}

func TestGeneratePagesCollisionWithinRun(t *testing.T) {
	f := newFixture(t, fixedSynth{content: synth.Content{
		Title:       "Half price pizza in Seattle today at Blue Door Cafe, all day long",
		Description: strings.Repeat("Every pizza is half price today. ", 6),
		Slug:        "half-price-pizza-today",
		Source:      synth.SourceAI,
	}})

	res, err := f.svc.GeneratePages(context.Background(), f.update.ID)
	require.NoError(t, err)

	byIntent := make(map[model.Intent]model.PageSummary)
	for _, p := range res.Pages {
		require.Empty(t, p.Error)
		assert.Equal(t, synth.SourceAI, p.Source)
		byIntent[p.Intent] = p
	}

	assert.Equal(t, "half-price-pizza-today", byIntent[model.IntentDirect].Slug)
	assert.Equal(t, "half-price-pizza-today", byIntent[model.IntentLocal].Slug)
	assert.Equal(t, "half-price-pizza-today-"+collisionHash(f.update.ID, model.IntentBrandedLocal), byIntent[model.IntentBrandedLocal].Slug)
	assert.Equal(t, "half-price-pizza-today-"+collisionHash(f.update.ID, model.IntentCategory), byIntent[model.IntentCategory].Slug)
	assert.Len(t, f.pages.pages, model.IntentCount)
}

func TestGeneratePagesSaveFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.pages.failAll = true

	_, err := f.svc.GeneratePages(context.Background(), f.update.ID)
	require.Error(t, err)
	assert.Equal(t, model.CodeSavePage, model.GetErrorCode(err))
	assert.Equal(t, businessModel.UpdateStatusFailed, f.businesses.statuses[f.update.ID])
}

func TestCollisionHashIsStable(t *testing.T) {
	id := uuid.MustParse("66666666-7777-8888-9999-000000000000")
	a := collisionHash(id, model.IntentLocal)

	assert.Len(t, a, collisionHashLength)
	assert.Equal(t, a, collisionHash(id, model.IntentLocal))
	assert.NotEqual(t, a, collisionHash(id, model.IntentCategory))
}

// ========================================
// PROFILE & PREVIEW
// ========================================

func TestGenerateProfilePage(t *testing.T) {
	f := newFixture(t, nil)

	summary, err := f.svc.GenerateProfilePage(context.Background(), f.business.ID)
	require.NoError(t, err)

	assert.Equal(t, "/us/wa/seattle/blue-door-cafe/about", summary.FilePath)
	assert.Equal(t, model.IntentDirect, summary.Intent)

	stored := f.pages.pages[summary.ID]
	require.NotNil(t, stored)
	assert.Nil(t, stored.UpdateID)
	assert.Equal(t, model.ProfileVariant, stored.PageVariant)
	assert.NotNil(t, stored.DynamicTags)
	assert.Empty(t, stored.DynamicTags)
}

func TestGenerateProfilePageRegenerates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.GenerateProfilePage(ctx, f.business.ID)
	require.NoError(t, err)
	second, err := f.svc.GenerateProfilePage(ctx, f.business.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.FilePath, second.FilePath)
	assert.Len(t, f.pages.pages, 1)
}

func TestGenerateProfilePageCollisionWithOtherBusiness(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.GenerateProfilePage(ctx, f.business.ID)
	require.NoError(t, err)

	namesake := *f.business
	namesake.ID = uuid.New()
	f.businesses.businesses[namesake.ID] = &namesake

	second, err := f.svc.GenerateProfilePage(ctx, namesake.ID)
	require.NoError(t, err)

	suffix := collisionHash(namesake.ID, model.IntentDirect)
	assert.Equal(t, "/us/wa/seattle/blue-door-cafe/about-"+suffix, second.FilePath)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, f.pages.pages, 2)
}

func TestGenerateProfilePageUnknownBusiness(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GenerateProfilePage(context.Background(), uuid.New())
	assert.Equal(t, model.CodeBusinessNotFound, model.GetErrorCode(err))
}

func TestPreviewRendersStoredPage(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.GeneratePages(ctx, f.update.ID)
	require.NoError(t, err)

	html, err := f.svc.Preview(ctx, res.Pages[0].ID)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<!DOCTYPE html>")
	assert.Contains(t, string(html), "Do you deliver?")
	assert.Contains(t, string(html), `"@type":"FAQPage"`)

	_, err = f.svc.Preview(ctx, uuid.New())
	assert.Equal(t, model.CodePageNotFound, model.GetErrorCode(err))
}
