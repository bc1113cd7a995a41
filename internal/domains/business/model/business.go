package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business is the resolved business record a generation run works from.
// It is owned by the account subsystem and read-only here.
type Business struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug,omitempty"`
	Category string    `json:"category"` // taxonomy key, e.g. "food-dining"

	Address Address `json:"address"`

	// Contact
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`

	// Descriptive attributes
	Description    string            `json:"description,omitempty"`
	Services       []string          `json:"services,omitempty"`
	Specialties    []string          `json:"specialties,omitempty"`
	Hours          string            `json:"hours,omitempty"`
	WeeklyHours    []DayHours        `json:"weekly_hours,omitempty"`
	PriceRange     string            `json:"price_range,omitempty"`
	PaymentMethods []string          `json:"payment_methods,omitempty"`
	Languages      []string          `json:"languages,omitempty"`
	Accessibility  []string          `json:"accessibility,omitempty"`
	ServiceArea    string            `json:"service_area,omitempty"`
	Awards         []string          `json:"awards,omitempty"`
	Certifications []string          `json:"certifications,omitempty"`
	SocialLinks    map[string]string `json:"social_links,omitempty"`
	FoundedYear    int               `json:"founded_year,omitempty"`
	FAQs           []FAQ             `json:"faqs,omitempty"`
	Latitude       *float64          `json:"latitude,omitempty"`
	Longitude      *float64          `json:"longitude,omitempty"`
	Reviews        *ReviewSummary    `json:"reviews,omitempty"`

	// StatusOverride forces the spoken hours answer, see StatusXxx constants.
	StatusOverride string `json:"status_override,omitempty"`

	// TimeZone is the IANA zone WeeklyHours are written in, e.g.
	// "America/Los_Angeles".
	TimeZone string `json:"time_zone,omitempty"`
}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// DayHours is one row of the structured weekly schedule.
// Open/Close use 24h "HH:MM".
type DayHours struct {
	Day    string `json:"day"` // "monday" ... "sunday"
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

type ReviewSummary struct {
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Status overrides understood by the voice hours answer
const (
	StatusEmergencyClosed   = "emergency-closed"
	StatusHolidayClosed     = "holiday-closed"
	StatusTemporarilyClosed = "temporarily-closed"
)

// HasGeo reports whether both coordinates are set.
func (b *Business) HasGeo() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// TopService returns the first listed service, or "" when none.
func (b *Business) TopService() string {
	for _, s := range b.Services {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// CityRegion formats "City, Region" skipping empty parts.
func (b *Business) CityRegion() string {
	parts := make([]string, 0, 2)
	if b.Address.City != "" {
		parts = append(parts, b.Address.City)
	}
	if b.Address.Region != "" {
		parts = append(parts, b.Address.Region)
	}
	return strings.Join(parts, ", ")
}

// Update is a short free-text business update from the intake flow.
type Update struct {
	ID           uuid.UUID  `json:"id"`
	BusinessID   uuid.UUID  `json:"business_id"`
	Content      string     `json:"content"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	SpecialHours string     `json:"special_hours,omitempty"`
	DealTerms    string     `json:"deal_terms,omitempty"`
	Category     string     `json:"category,omitempty"`
	FAQs         []FAQ      `json:"faqs,omitempty"`
	Status       string     `json:"status,omitempty"`

	// Freshness tags computed at generation time
	Tags         []string   `json:"tags,omitempty"`
	TagsExpireAt *time.Time `json:"tags_expire_at,omitempty"`
}

// Update processing states
const (
	UpdateStatusPending   = "pending"
	UpdateStatusProcessed = "processed"
	UpdateStatusFailed    = "failed"
)
