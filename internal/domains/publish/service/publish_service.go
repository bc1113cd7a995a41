package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pagesmith-backend/internal/domains/page/codec"
	pageModel "pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/render"
	"pagesmith-backend/internal/domains/publish/model"
	"pagesmith-backend/internal/infrastructure/cdn"
	"pagesmith-backend/internal/infrastructure/metrics"
	"pagesmith-backend/pkg/logger"
)

// Config describes where published pages are served from.
type Config struct {
	BaseURL string
	// AliasBaseURL is purged alongside BaseURL when set.
	AliasBaseURL string
	Workers      int
}

type publishService struct {
	pages    PageStore
	storage  Uploader
	purger   cdn.Purger
	renderer Renderer
	cache    BusinessCache
	cfg      Config
	now      func() time.Time
}

type Option func(*publishService)

func WithClock(now func() time.Time) Option {
	return func(s *publishService) { s.now = now }
}

// WithBusinessCache invalidates cached business records after publishing.
func WithBusinessCache(c BusinessCache) Option {
	return func(s *publishService) { s.cache = c }
}

func NewService(pages PageStore, storage Uploader, purger cdn.Purger, renderer Renderer, cfg Config, opts ...Option) ServiceInterface {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.AliasBaseURL = strings.TrimRight(cfg.AliasBaseURL, "/")
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if purger == nil {
		purger = cdn.NoopPurger{}
	}

	s := &publishService{
		pages:    pages,
		storage:  storage,
		purger:   purger,
		renderer: renderer,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stageResult is the outcome of one page in one stage.
type stageResult struct {
	err error
}

func (s *publishService) Publish(ctx context.Context, req model.Request) (*model.Report, error) {
	sel, err := req.Selector()
	if err != nil {
		return nil, err
	}

	ids, err := s.pages.ListUnpublishedIDs(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("resolve pages: %w", err)
	}
	if len(ids) == 0 {
		return model.EmptyReport(), nil
	}

	publishedAt := s.now().UTC()
	pages, err := s.pages.MarkPublished(ctx, ids, publishedAt)
	if err != nil {
		return nil, fmt.Errorf("mark published: %w", err)
	}

	report := model.EmptyReport()
	report.Published.Total = len(pages)
	for i := range pages {
		report.Published.Pages = append(report.Published.Pages, pages[i].ToSummary())
	}
	if len(pages) == 0 {
		return report, nil
	}

	uploads := s.fanOut(ctx, pages, s.uploadPage)
	for i, r := range uploads {
		report.StaticFileGeneration.Record(r.err == nil)
		metrics.RecordPropagation(model.StageStaticFile, r.err == nil)
		if r.err != nil {
			report.Failures = append(report.Failures, s.failure(&pages[i], model.StageStaticFile, r.err))
		}
	}

	report.Sitemap = s.regenerateSiteFiles(ctx, report)

	purges := s.fanOut(ctx, pages, s.purgePage)
	for i, r := range purges {
		report.CacheInvalidation.Record(r.err == nil)
		metrics.RecordPropagation(model.StageCDN, r.err == nil)
		if r.err != nil {
			report.Failures = append(report.Failures, s.failure(&pages[i], model.StageCDN, r.err))
		}
	}

	s.invalidateBusinesses(ctx, pages)

	logger.Info("publish finished", map[string]interface{}{
		"published":      report.Published.Total,
		"static_ok":      report.StaticFileGeneration.Successful,
		"static_failed":  report.StaticFileGeneration.Failed,
		"purge_ok":       report.CacheInvalidation.Successful,
		"purge_failed":   report.CacheInvalidation.Failed,
		"failures_total": len(report.Failures),
	})
	return report, nil
}

// fanOut runs fn for every page and waits for all of them. A failing page
// never cancels its siblings.
func (s *publishService) fanOut(ctx context.Context, pages []pageModel.Page, fn func(context.Context, *pageModel.Page) error) []stageResult {
	results := make([]stageResult, len(pages))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i := range pages {
		i := i
		g.Go(func() error {
			results[i].err = fn(ctx, &pages[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *publishService) uploadPage(ctx context.Context, p *pageModel.Page) error {
	pd, err := codec.Unmarshal(p.PageData)
	if err != nil {
		return err
	}

	ts := render.Timestamps{Published: p.CreatedAt, Modified: p.LastModified()}
	if p.PublishedAt != nil {
		ts.Published = *p.PublishedAt
	}

	doc, err := s.renderer.Render(p.Intent, pd, ts)
	if err != nil {
		return err
	}
	doc = InjectDiscoveryMeta(doc, s.cfg.BaseURL+p.FilePath, ts.Published)

	if err := s.storage.Upload(ctx, ObjectKey(p.FilePath), doc, contentTypeHTML); err != nil {
		return fmt.Errorf("upload %s: %w", p.FilePath, err)
	}
	return nil
}

func (s *publishService) purgePage(ctx context.Context, p *pageModel.Page) error {
	var errs []error
	for _, base := range []string{s.cfg.BaseURL, s.cfg.AliasBaseURL} {
		if base == "" {
			continue
		}
		if err := s.purger.Purge(ctx, base+p.FilePath); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// regenerateSiteFiles rewrites sitemap.xml and robots.txt from every live
// page. Nothing is written when no page is published.
func (s *publishService) regenerateSiteFiles(ctx context.Context, report *model.Report) *model.SitemapResult {
	live, err := s.pages.ListPublished(ctx)
	if err != nil {
		report.Failures = append(report.Failures, model.Failure{Stage: model.StageSitemap, Error: err.Error()})
		return nil
	}
	if len(live) == 0 {
		return nil
	}

	res := &model.SitemapResult{URLs: len(live)}

	sitemap, err := BuildSitemap(s.cfg.BaseURL, live)
	if err == nil {
		err = s.storage.Upload(ctx, SitemapKey, sitemap, contentTypeXML)
	}
	if err != nil {
		report.Failures = append(report.Failures, model.Failure{Stage: model.StageSitemap, Error: err.Error()})
	} else {
		res.SitemapStored = true
	}
	metrics.RecordPropagation(model.StageSitemap, err == nil)

	err = s.storage.Upload(ctx, RobotsKey, BuildRobots(s.cfg.BaseURL), contentTypeText)
	if err != nil {
		report.Failures = append(report.Failures, model.Failure{Stage: model.StageRobots, Error: err.Error()})
	} else {
		res.RobotsStored = true
	}
	metrics.RecordPropagation(model.StageRobots, err == nil)

	return res
}

func (s *publishService) invalidateBusinesses(ctx context.Context, pages []pageModel.Page) {
	if s.cache == nil {
		return
	}
	seen := make(map[uuid.UUID]bool)
	for _, p := range pages {
		if seen[p.BusinessID] {
			continue
		}
		seen[p.BusinessID] = true
		if err := s.cache.InvalidateBusiness(ctx, p.BusinessID); err != nil {
			logger.Warn("business cache invalidation failed", map[string]interface{}{
				"business_id": p.BusinessID.String(),
				"error":       err.Error(),
			})
		}
	}
}

func (s *publishService) failure(p *pageModel.Page, stage string, err error) model.Failure {
	logger.ErrorFields("page propagation failed", err, map[string]interface{}{
		"page_id":   p.ID.String(),
		"file_path": p.FilePath,
		"stage":     stage,
	})
	return model.Failure{
		PageID:   p.ID.String(),
		FilePath: p.FilePath,
		Stage:    stage,
		Error:    err.Error(),
	}
}
