package freshness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 10, 17, 15, 4, 0, 0, time.UTC)

func TestTagSaleToday(t *testing.T) {
	res := Tag("50% off all services today only!", now)

	assert.Equal(t, TagUpdatedToday, res.Tags[0])
	assert.True(t, res.Has(TagSpecialActive))
	assert.True(t, res.Has(TagLimitedTimeOffer))
	assert.True(t, res.Has(TagHappeningNow))
	assert.Equal(t, now.Add(24*time.Hour), res.ExpiresAt)
}

func TestTagExpiry(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"deal only", "Spring sale on all bikes", now.Add(24 * time.Hour)},
		{"happening now", "Live music tonight", now.Add(24 * time.Hour)},
		{"event", "Wine tasting event on Saturday", time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)},
		{"default", "We added gluten free crusts to the menu", now.Add(7 * 24 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tag(tt.text, now).ExpiresAt)
		})
	}
}

func TestTagCategories(t *testing.T) {
	tests := []struct {
		text string
		want []string
		not  []string
	}{
		{"Emergency plumbing available 24/7", []string{TagEmergencyAvailable, TagImmediateService}, nil},
		{"Closed temporarily for renovations, back Monday", []string{TagTemporarilyClosed}, nil},
		{"We are closed on Mondays", nil, []string{TagTemporarilyClosed}},
		{"Holiday hours for Thanksgiving week", []string{TagHolidayHours}, nil},
		{"Introducing our new menu", []string{TagNewOfferings}, []string{TagSpecialActive}},
	}
	for _, tt := range tests {
		res := Tag(tt.text, now)
		for _, tag := range tt.want {
			assert.True(t, res.Has(tag), "%q should carry %s, got %v", tt.text, tag, res.Tags)
		}
		for _, tag := range tt.not {
			assert.False(t, res.Has(tag), "%q should not carry %s", tt.text, tag)
		}
	}
}

func TestTagAlwaysIncludesBase(t *testing.T) {
	res := Tag("", now)
	assert.Equal(t, []string{TagUpdatedToday}, res.Tags)
	assert.Equal(t, now.Add(7*24*time.Hour), res.ExpiresAt)
}

func TestNextMidnightKeepsLocation(t *testing.T) {
	loc := time.FixedZone("PDT", -7*3600)
	local := time.Date(2026, 10, 17, 23, 59, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, loc), nextMidnight(local))
}
