package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	businessModel "pagesmith-backend/internal/domains/business/model"
)

// Page is a generated document row. Exactly one non-expired Page may exist
// per (BusinessID, FilePath).
type Page struct {
	ID                uuid.UUID  `json:"id"`
	BusinessID        uuid.UUID  `json:"business_id"`
	UpdateID          *uuid.UUID `json:"update_id,omitempty"` // nil for profile pages
	GenerationBatchID uuid.UUID  `json:"generation_batch_id"`

	FilePath    string `json:"file_path"`
	Slug        string `json:"slug"`
	Intent      Intent `json:"intent"`
	PageVariant string `json:"page_variant"`
	Title       string `json:"title"`

	// PageData holds the compact JSON blob.
	PageData     json.RawMessage `json:"page_data"`
	SizeEstimate int             `json:"size_estimate"`

	DynamicTags  []string   `json:"dynamic_tags"`
	TagsExpireAt *time.Time `json:"tags_expire_at,omitempty"`

	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Expired     bool       `json:"expired"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LastModified is the most recent of UpdatedAt and PublishedAt.
func (p *Page) LastModified() time.Time {
	if p.PublishedAt != nil && p.PublishedAt.After(p.UpdatedAt) {
		return *p.PublishedAt
	}
	return p.UpdatedAt
}

// PageData is the canonical rendering input for one page.
type PageData struct {
	Business businessModel.Business `json:"business"`
	Update   *businessModel.Update  `json:"update,omitempty"`
	SEO      SEO                    `json:"seo"`
	Intent   IntentInfo             `json:"intent"`
	FAQs     []businessModel.FAQ    `json:"faqs,omitempty"`
}

type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type IntentInfo struct {
	Type        Intent `json:"type"`
	FilePath    string `json:"file_path"`
	Slug        string `json:"slug"`
	PageVariant string `json:"page_variant"`
}

// PageSummary is the caller-facing view of a generated or published page.
type PageSummary struct {
	ID       uuid.UUID `json:"id"`
	Intent   Intent    `json:"intent"`
	FilePath string    `json:"file_path"`
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Source   string    `json:"source,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// ToSummary builds a PageSummary from the row.
func (p *Page) ToSummary() PageSummary {
	return PageSummary{
		ID:       p.ID,
		Intent:   p.Intent,
		FilePath: p.FilePath,
		Slug:     p.Slug,
		Title:    p.Title,
		Tags:     p.DynamicTags,
	}
}

// GenerateResult is returned by a generation run.
type GenerateResult struct {
	BatchID uuid.UUID     `json:"batch_id"`
	Pages   []PageSummary `json:"pages"`
}

// Profile page placement
const (
	ProfileSlug    = "about"
	ProfileVariant = "profile"
)
