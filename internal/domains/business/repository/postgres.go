package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pagesmith-backend/internal/domains/business/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// attributes mirrors the businesses.attributes jsonb column.
type attributes struct {
	Description    string            `json:"description,omitempty"`
	Services       []string          `json:"services,omitempty"`
	Specialties    []string          `json:"specialties,omitempty"`
	Hours          string            `json:"hours,omitempty"`
	WeeklyHours    []model.DayHours  `json:"weekly_hours,omitempty"`
	PriceRange     string            `json:"price_range,omitempty"`
	PaymentMethods []string          `json:"payment_methods,omitempty"`
	Languages      []string          `json:"languages,omitempty"`
	Accessibility  []string          `json:"accessibility,omitempty"`
	ServiceArea    string            `json:"service_area,omitempty"`
	Awards         []string          `json:"awards,omitempty"`
	Certifications []string          `json:"certifications,omitempty"`
	SocialLinks    map[string]string `json:"social_links,omitempty"`
	FoundedYear    int               `json:"founded_year,omitempty"`
	FAQs           []model.FAQ       `json:"faqs,omitempty"`
	TimeZone       string            `json:"time_zone,omitempty"`
}

func (r *postgresRepository) GetBusiness(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	query := `
		SELECT
			id, name, COALESCE(slug, ''), category,
			COALESCE(address_street, ''), COALESCE(address_city, ''), COALESCE(address_region, ''),
			COALESCE(address_postal_code, ''), COALESCE(address_country, ''),
			COALESCE(phone, ''), COALESCE(email, ''), COALESCE(website, ''),
			COALESCE(attributes, '{}'::jsonb),
			latitude, longitude,
			COALESCE(review_count, 0), COALESCE(review_average::text, ''),
			COALESCE(status_override, '')
		FROM businesses
		WHERE id = $1 AND deleted_at IS NULL
	`

	var (
		b           model.Business
		attrsRaw    []byte
		reviewCount int
		reviewAvg   string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.Slug, &b.Category,
		&b.Address.Street, &b.Address.City, &b.Address.Region,
		&b.Address.PostalCode, &b.Address.Country,
		&b.Phone, &b.Email, &b.Website,
		&attrsRaw,
		&b.Latitude, &b.Longitude,
		&reviewCount, &reviewAvg,
		&b.StatusOverride,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	var attrs attributes
	if err := json.Unmarshal(attrsRaw, &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode business attributes: %w", err)
	}
	attrs.applyTo(&b)

	if reviewCount > 0 {
		avg, err := decimal.NewFromString(reviewAvg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse review average %q: %w", reviewAvg, err)
		}
		b.Reviews = &model.ReviewSummary{Count: reviewCount, Average: avg}
	}

	return &b, nil
}

func (a attributes) applyTo(b *model.Business) {
	b.Description = a.Description
	b.Services = a.Services
	b.Specialties = a.Specialties
	b.Hours = a.Hours
	b.WeeklyHours = a.WeeklyHours
	b.PriceRange = a.PriceRange
	b.PaymentMethods = a.PaymentMethods
	b.Languages = a.Languages
	b.Accessibility = a.Accessibility
	b.ServiceArea = a.ServiceArea
	b.Awards = a.Awards
	b.Certifications = a.Certifications
	b.SocialLinks = a.SocialLinks
	b.FoundedYear = a.FoundedYear
	b.FAQs = a.FAQs
	b.TimeZone = a.TimeZone
}

func (r *postgresRepository) GetUpdate(ctx context.Context, id uuid.UUID) (*model.Update, error) {
	query := `
		SELECT
			id, business_id, content, created_at, expires_at,
			COALESCE(special_hours, ''), COALESCE(deal_terms, ''), COALESCE(category, ''),
			COALESCE(faqs, '[]'::jsonb), status
		FROM business_updates
		WHERE id = $1
	`

	var (
		u       model.Update
		faqsRaw []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.BusinessID, &u.Content, &u.CreatedAt, &u.ExpiresAt,
		&u.SpecialHours, &u.DealTerms, &u.Category,
		&faqsRaw, &u.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUpdateNotFound
		}
		return nil, fmt.Errorf("failed to get update: %w", err)
	}

	if err := json.Unmarshal(faqsRaw, &u.FAQs); err != nil {
		return nil, fmt.Errorf("failed to decode update faqs: %w", err)
	}
	if len(u.FAQs) == 0 {
		u.FAQs = nil
	}

	return &u, nil
}

func (r *postgresRepository) SetUpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE business_updates SET status = $2, processed_at = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUpdateNotFound
	}
	return nil
}
