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
	pageModel "pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/render"
	pageRepo "pagesmith-backend/internal/domains/page/repository"
	"pagesmith-backend/internal/domains/publish/model"
)

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

// ========================================
// FAKES
// ========================================

type memoryPages struct {
	mu    sync.Mutex
	pages []*pageModel.Page
}

func (m *memoryPages) ListUnpublishedIDs(_ context.Context, sel pageRepo.Selector) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[uuid.UUID]bool)
	for _, id := range sel.IDs {
		wanted[id] = true
	}
	var out []uuid.UUID
	for _, p := range m.pages {
		if p.Published || p.Expired {
			continue
		}
		switch {
		case len(sel.IDs) > 0 && wanted[p.ID],
			sel.BatchID != nil && *sel.BatchID == p.GenerationBatchID,
			sel.All:
			out = append(out, p.ID)
		}
	}
	return out, nil
}

func (m *memoryPages) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) ([]pageModel.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[uuid.UUID]bool)
	for _, id := range ids {
		wanted[id] = true
	}
	var out []pageModel.Page
	for _, p := range m.pages {
		if wanted[p.ID] && !p.Published && !p.Expired {
			p.Published = true
			ts := at
			p.PublishedAt = &ts
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memoryPages) ListPublished(context.Context) ([]pageRepo.PublishedPath, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []pageRepo.PublishedPath
	for _, p := range m.pages {
		if p.Published && !p.Expired {
			out = append(out, pageRepo.PublishedPath{FilePath: p.FilePath, LastModified: p.LastModified()})
		}
	}
	return out, nil
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failFor map[string]bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}, failFor: map[string]bool{}}
}

func (s *memoryStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[key] {
		return errors.New("storage unavailable")
	}
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

type recordingPurger struct {
	mu   sync.Mutex
	urls []string
	fail string
}

func (p *recordingPurger) Purge(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, url)
	if p.fail != "" && strings.Contains(url, p.fail) {
		return errors.New("purge rejected")
	}
	return nil
}

type recordingCache struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (c *recordingCache) InvalidateBusiness(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
	return nil
}

// ========================================
// FIXTURES
// ========================================

func storedPage(t *testing.T, business businessModel.Business, slug string, batch uuid.UUID) *pageModel.Page {
	t.Helper()
	path := "/us/wa/seattle/food-dining/" + slug
	data, err := codec.Marshal(pageModel.PageData{
		Business: business,
		Update:   &businessModel.Update{ID: uuid.New(), Content: "Fresh pies " + slug},
		SEO:      pageModel.SEO{Title: "Title " + slug, Description: "Description " + slug},
		Intent:   pageModel.IntentInfo{Type: pageModel.IntentLocal, FilePath: path, Slug: slug, PageVariant: "near-me"},
	})
	require.NoError(t, err)

	return &pageModel.Page{
		ID:                uuid.New(),
		BusinessID:        business.ID,
		GenerationBatchID: batch,
		FilePath:          path,
		Slug:              slug,
		Intent:            pageModel.IntentLocal,
		Title:             "Title " + slug,
		PageData:          data,
		CreatedAt:         fixedNow.Add(-time.Hour),
		UpdatedAt:         fixedNow.Add(-time.Hour),
	}
}

type fixture struct {
	svc     ServiceInterface
	pages   *memoryPages
	storage *memoryStorage
	purger  *recordingPurger
	cache   *recordingCache
	batch   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	business := businessModel.Business{
		ID:       uuid.New(),
		Name:     "Blue Door Cafe",
		Category: "food-dining",
		Address:  businessModel.Address{City: "Seattle", Region: "WA"},
	}
	batch := uuid.New()
	pages := &memoryPages{pages: []*pageModel.Page{
		storedPage(t, business, "pizza-near-me", batch),
		storedPage(t, business, "pasta-near-me", batch),
		storedPage(t, business, "salad-near-me", batch),
	}}

	engine, err := render.NewEngine(render.Site{Name: "Local Updates", BaseURL: "https://pages.example.com"},
		render.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	storage := newMemoryStorage()
	purger := &recordingPurger{}
	cache := &recordingCache{}
	svc := NewService(pages, storage, purger, engine, Config{
		BaseURL:      "https://pages.example.com/",
		AliasBaseURL: "https://www.pages.example.com",
		Workers:      2,
	}, WithClock(func() time.Time { return fixedNow }), WithBusinessCache(cache))

	return &fixture{svc: svc, pages: pages, storage: storage, purger: purger, cache: cache, batch: batch}
}

// ========================================
// TESTS
// ========================================

func TestPublishAllWithOneUploadFailure(t *testing.T) {
	f := newFixture(t)
	f.storage.failFor["us/wa/seattle/food-dining/pasta-near-me/index.html"] = true

	report, err := f.svc.Publish(context.Background(), model.Request{PublishAll: true})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Published.Total)
	assert.Len(t, report.Published.Pages, 3)
	assert.Equal(t, model.StageCounts{Attempted: 3, Successful: 2, Failed: 1}, report.StaticFileGeneration)
	assert.Equal(t, model.StageCounts{Attempted: 3, Successful: 3, Failed: 0}, report.CacheInvalidation)

	for _, p := range f.pages.pages {
		assert.True(t, p.Published, p.FilePath)
		require.NotNil(t, p.PublishedAt)
		assert.Equal(t, fixedNow, *p.PublishedAt)
	}

	require.Len(t, report.Failures, 1)
	assert.Equal(t, model.StageStaticFile, report.Failures[0].Stage)
	assert.Equal(t, "/us/wa/seattle/food-dining/pasta-near-me", report.Failures[0].FilePath)

	require.NotNil(t, report.Sitemap)
	assert.Equal(t, 3, report.Sitemap.URLs)
	assert.True(t, report.Sitemap.SitemapStored)
	assert.True(t, report.Sitemap.RobotsStored)
	assert.Len(t, f.cache.ids, 1)
}

func TestPublishUploadsRenderedDocuments(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Publish(context.Background(), model.Request{BatchID: f.batch.String()})
	require.NoError(t, err)

	key := "us/wa/seattle/food-dining/pizza-near-me/index.html"
	doc := string(f.storage.objects[key])
	require.NotEmpty(t, doc)
	assert.Equal(t, contentTypeHTML, f.storage.types[key])
	assert.Contains(t, doc, "<title>Title pizza-near-me</title>")
	assert.Contains(t, doc, `<meta name="citation_public_url" content="https://pages.example.com/us/wa/seattle/food-dining/pizza-near-me">`)
	assert.Contains(t, doc, `"datePublished":"2026-10-17T12:00:00Z"`)

	sitemap := string(f.storage.objects[SitemapKey])
	assert.Equal(t, 3, strings.Count(sitemap, "<url>"))
	assert.Contains(t, sitemap, "<loc>https://pages.example.com/us/wa/seattle/food-dining/salad-near-me</loc>")
	assert.Contains(t, string(f.storage.objects[RobotsKey]), "User-agent: GPTBot")

	assert.ElementsMatch(t, []string{
		"https://pages.example.com/us/wa/seattle/food-dining/pizza-near-me",
		"https://www.pages.example.com/us/wa/seattle/food-dining/pizza-near-me",
		"https://pages.example.com/us/wa/seattle/food-dining/pasta-near-me",
		"https://www.pages.example.com/us/wa/seattle/food-dining/pasta-near-me",
		"https://pages.example.com/us/wa/seattle/food-dining/salad-near-me",
		"https://www.pages.example.com/us/wa/seattle/food-dining/salad-near-me",
	}, f.purger.urls)
}

func TestPublishIsIdempotent(t *testing.T) {
	f := newFixture(t)
	id := f.pages.pages[0].ID.String()
	ctx := context.Background()

	first, err := f.svc.Publish(ctx, model.Request{PageIDs: []string{id}})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Published.Total)
	purgesAfterFirst := len(f.purger.urls)
	objectsAfterFirst := len(f.storage.objects)

	second, err := f.svc.Publish(ctx, model.Request{PageIDs: []string{id}})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Published.Total)
	assert.Empty(t, second.Published.Pages)
	assert.Equal(t, model.StageCounts{}, second.StaticFileGeneration)
	assert.Equal(t, model.StageCounts{}, second.CacheInvalidation)
	assert.Len(t, f.purger.urls, purgesAfterFirst)
	assert.Len(t, f.storage.objects, objectsAfterFirst)
}

func TestPublishPurgeFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.purger.fail = "www."

	report, err := f.svc.Publish(context.Background(), model.Request{PublishAll: true})
	require.NoError(t, err)

	assert.Equal(t, model.StageCounts{Attempted: 3, Successful: 3}, report.StaticFileGeneration)
	assert.Equal(t, model.StageCounts{Attempted: 3, Failed: 3}, report.CacheInvalidation)
	for _, fail := range report.Failures {
		assert.Equal(t, model.StageCDN, fail.Stage)
	}
}

func TestPublishSitemapFailureDoesNotFailBatch(t *testing.T) {
	f := newFixture(t)
	f.storage.failFor[SitemapKey] = true

	report, err := f.svc.Publish(context.Background(), model.Request{PublishAll: true})
	require.NoError(t, err)

	require.NotNil(t, report.Sitemap)
	assert.False(t, report.Sitemap.SitemapStored)
	assert.True(t, report.Sitemap.RobotsStored)
	assert.Equal(t, 3, report.StaticFileGeneration.Successful)
}

func TestPublishInvalidRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Publish(context.Background(), model.Request{})
	assert.ErrorIs(t, err, model.ErrSelectorCount)
	for _, p := range f.pages.pages {
		assert.False(t, p.Published)
	}
}

func TestBuildSitemapKeepsLatestModification(t *testing.T) {
	older := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)

	out, err := BuildSitemap("https://pages.example.com", []pageRepo.PublishedPath{
		{FilePath: "/a", LastModified: older},
		{FilePath: "/a", LastModified: newer},
		{FilePath: "/b", LastModified: older},
	})
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, s, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Equal(t, 2, strings.Count(s, "<url>"))
	assert.Contains(t, s, "<lastmod>2026-10-02T00:00:00Z</lastmod>")
}

func TestInjectDiscoveryMeta(t *testing.T) {
	doc := []byte("<html><head><title>x</title></head><body></body></html>")
	out := string(InjectDiscoveryMeta(doc, "https://pages.example.com/a?b=1&c=2", fixedNow))

	assert.Contains(t, out, `content="https://pages.example.com/a?b=1&amp;c=2"`)
	assert.Less(t, strings.Index(out, "googlebot"), strings.Index(out, "</head>"))

	assert.Equal(t, "no head", string(InjectDiscoveryMeta([]byte("no head"), "u", fixedNow)))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "us/wa/seattle/food-dining/x/index.html", ObjectKey("/us/wa/seattle/food-dining/x"))
}
