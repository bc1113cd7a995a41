package urlpath

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
)

func seattleCafe() *businessModel.Business {
	return &businessModel.Business{
		Name:     "Blue Door Café",
		Category: "food-dining",
		Services: []string{"Wood Fired Pizza", "Catering"},
		Address: businessModel.Address{
			City:    "Seattle",
			Region:  "WA",
			Country: "US",
		},
	}
}

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func TestBuildRoutesByIntent(t *testing.T) {
	tests := []struct {
		intent     model.Intent
		wantPrefix string
		wantInSlug string
		variant    string
	}{
		{model.IntentDirect, "/us/wa/seattle/blue-door-cafe/", "50-percent-off", "brand-update"},
		{model.IntentBrandedLocal, "/us/wa/seattle/blue-door-cafe/", "seattle", "brand-local"},
		{model.IntentLocal, "/us/wa/seattle/food-dining/", "near-me", "near-me"},
		{model.IntentCategory, "/us/wa/seattle/food-dining/", "wood-fired-pizza", "category-service"},
		{model.IntentServiceUrgent, "/us/wa/seattle/food-dining/", "available-now", "urgent-availability"},
		{model.IntentCompetitive, "/us/wa/seattle/food-dining/", "top-rated", "top-rated"},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			res, err := Build(Input{
				UpdateText: "50% off all services today only!",
				Intent:     tt.intent,
				Business:   seattleCafe(),
				Now:        fixedNow,
			})
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(res.FilePath, tt.wantPrefix), res.FilePath)
			assert.Contains(t, res.Slug, tt.wantInSlug)
			assert.Equal(t, tt.variant, res.PageVariant)
			assert.LessOrEqual(t, len(res.Slug), MaxSlugLength)
			assert.True(t, strings.HasSuffix(res.FilePath, "/"+res.Slug))
		})
	}
}

func TestBuildCompetitiveIncludesYear(t *testing.T) {
	res, err := Build(Input{Intent: model.IntentCompetitive, Business: seattleCafe(), Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, "top-rated-wood-fired-pizza-seattle-2026", res.Slug)
}

func TestBuildServiceUrgentAroundTheClock(t *testing.T) {
	res, err := Build(Input{
		UpdateText: "Emergency repairs available 24/7 this week",
		Intent:     model.IntentServiceUrgent,
		Business:   seattleCafe(),
		Now:        fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, "emergency-wood-fired-pizza-available-24-7", res.Slug)
}

func TestBuildUsesAISlugWithinBounds(t *testing.T) {
	res, err := Build(Input{
		Intent:   model.IntentDirect,
		Business: seattleCafe(),
		AISlug:   "  Fall Menu Launch -- Pumpkin Pizza!  ",
		Now:      fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, "fall-menu-launch-pumpkin-pizza", res.Slug)
	assert.Equal(t, "/us/wa/seattle/blue-door-cafe/fall-menu-launch-pumpkin-pizza", res.FilePath)
}

func TestBuildIgnoresOutOfBoundsAISlug(t *testing.T) {
	for _, suggestion := range []string{"abc", strings.Repeat("x", 81)} {
		res, err := Build(Input{
			UpdateText: "Grand opening this weekend",
			Intent:     model.IntentDirect,
			Business:   seattleCafe(),
			AISlug:     suggestion,
			Now:        fixedNow,
		})
		require.NoError(t, err)
		assert.Equal(t, "grand-opening-this-weekend", res.Slug)
	}
}

func TestBuildCapsLongAISlug(t *testing.T) {
	res, err := Build(Input{
		Intent:   model.IntentDirect,
		Business: seattleCafe(),
		AISlug:   "the very best wood fired pizza specials for the whole family this autumn",
		Now:      fixedNow,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Slug), MaxSlugLength)
	assert.False(t, strings.HasSuffix(res.Slug, "-"))
}

func TestBuildFallsBackWhenNoKeywords(t *testing.T) {
	res, err := Build(Input{UpdateText: "hello", Intent: model.IntentDirect, Business: seattleCafe(), Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, "latest-update", res.Slug)
}

func TestBuildMissingCity(t *testing.T) {
	b := seattleCafe()
	b.Address.City = "  "

	_, err := Build(Input{UpdateText: "sale", Intent: model.IntentLocal, Business: b, Now: fixedNow})

	require.Error(t, err)
	assert.True(t, model.IsMissingURLFields(err))
	assert.Contains(t, err.Error(), "address_city")
}

func TestValidateBusinessListsAllMissingFields(t *testing.T) {
	err := ValidateBusiness(&businessModel.Business{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address_city, address_region, name")
}

func TestFilePathDefaultsCountryAndCategory(t *testing.T) {
	b := &businessModel.Business{Name: "Ace", Address: businessModel.Address{City: "Austin", Region: "TX"}}
	assert.Equal(t, "/us/tx/austin/local-business/x", FilePath(b, model.IntentLocal, "x"))
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"50-percent-off", "today"}, Keywords("50% OFF everything today"))
	assert.Equal(t, []string{"new-menu", "fall"}, Keywords("Our new menu for fall"))
	assert.Empty(t, Keywords("We are here"))
}
