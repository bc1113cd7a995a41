package model

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	pageModel "pagesmith-backend/internal/domains/page/model"
	pageRepo "pagesmith-backend/internal/domains/page/repository"
)

// Request selects the pages to publish. Exactly one selector must be set.
type Request struct {
	PageIDs    []string `json:"page_ids,omitempty"`
	BatchID    string   `json:"batch_id,omitempty"`
	PublishAll bool     `json:"publish_all,omitempty"`
}

var ErrSelectorCount = errors.New("exactly one of page_ids, batch_id or publish_all is required")

func (r Request) Validate() error {
	set := 0
	if len(r.PageIDs) > 0 {
		set++
	}
	if r.BatchID != "" {
		set++
	}
	if r.PublishAll {
		set++
	}
	if set != 1 {
		return ErrSelectorCount
	}

	return validation.ValidateStruct(&r,
		validation.Field(&r.PageIDs, validation.Length(0, 1000), validation.Each(validation.Required, is.UUID)),
		validation.Field(&r.BatchID, is.UUID),
	)
}

// Selector converts a validated request into a repository selector.
func (r Request) Selector() (pageRepo.Selector, error) {
	if err := r.Validate(); err != nil {
		return pageRepo.Selector{}, err
	}

	switch {
	case r.PublishAll:
		return pageRepo.Selector{All: true}, nil
	case r.BatchID != "":
		id, err := uuid.Parse(r.BatchID)
		if err != nil {
			return pageRepo.Selector{}, fmt.Errorf("batch_id: %w", err)
		}
		return pageRepo.Selector{BatchID: &id}, nil
	}

	ids := make([]uuid.UUID, 0, len(r.PageIDs))
	seen := make(map[uuid.UUID]bool, len(r.PageIDs))
	for _, raw := range r.PageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return pageRepo.Selector{}, fmt.Errorf("page_ids: %w", err)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return pageRepo.Selector{IDs: ids}, nil
}

// ========================================
// REPORT
// ========================================

// Propagation stages
const (
	StageStaticFile = "static_file"
	StageCDN        = "cdn_purge"
	StageSitemap    = "sitemap"
	StageRobots     = "robots"
)

// Report separates "published in the datastore" from "fully propagated".
type Report struct {
	Published            PublishedPages `json:"published"`
	StaticFileGeneration StageCounts    `json:"staticFileGeneration"`
	CacheInvalidation    StageCounts    `json:"cacheInvalidation"`
	Sitemap              *SitemapResult `json:"sitemap,omitempty"`
	Failures             []Failure      `json:"failures,omitempty"`
}

type PublishedPages struct {
	Total int                     `json:"total"`
	Pages []pageModel.PageSummary `json:"pages"`
}

type StageCounts struct {
	Attempted  int `json:"attempted"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Record counts one attempt.
func (s *StageCounts) Record(ok bool) {
	s.Attempted++
	if ok {
		s.Successful++
	} else {
		s.Failed++
	}
}

type SitemapResult struct {
	URLs          int  `json:"urls"`
	SitemapStored bool `json:"sitemapStored"`
	RobotsStored  bool `json:"robotsStored"`
}

// Failure is one propagation error. PageID is empty for site-wide artifacts.
type Failure struct {
	PageID   string `json:"pageId,omitempty"`
	FilePath string `json:"filePath,omitempty"`
	Stage    string `json:"stage"`
	Error    string `json:"error"`
}

// EmptyReport is returned when nothing was left to publish.
func EmptyReport() *Report {
	return &Report{Published: PublishedPages{Pages: []pageModel.PageSummary{}}}
}
