package synth

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
)

const excerptLength = 140

var topRatedThreshold = decimal.NewFromInt(4)

type fallbackFunc func(f facts) (title, description string)

// facts are the record values every fallback template draws from.
type facts struct {
	name      string
	place     string // "City, Region"
	city      string
	category  businessModel.Category
	service   string
	excerpt   string
	cta       string
	topRated  bool
	hasUpdate bool
}

var fallbacks = [model.IntentCount]fallbackFunc{
	0: func(f facts) (string, string) {
		title := fmt.Sprintf("%s - Current Update - %s", f.name, f.place)
		if !f.hasUpdate {
			title = fmt.Sprintf("%s - %s in %s", f.name, f.category.Name, f.place)
		}
		return title, fmt.Sprintf("%s: %s %s", f.name, f.excerpt, f.cta)
	},
	1: func(f facts) (string, string) {
		return fmt.Sprintf("%s Near Me in %s - %s", f.category.Name, f.place, f.name),
			fmt.Sprintf("Looking for a %s near you in %s? %s: %s %s",
				strings.ToLower(f.category.Name), f.city, f.name, f.excerpt, f.cta)
	},
	2: func(f facts) (string, string) {
		return fmt.Sprintf("Professional %s in %s | %s", f.category.Plural, f.place, f.name),
			fmt.Sprintf("%s provides %s in %s. %s %s",
				f.name, strings.ToLower(f.service), f.place, f.excerpt, f.cta)
	},
	3: func(f facts) (string, string) {
		return fmt.Sprintf("%s %s - Latest Update", f.name, f.city),
			fmt.Sprintf("The latest from %s in %s: %s %s", f.name, f.place, f.excerpt, f.cta)
	},
	4: func(f facts) (string, string) {
		return fmt.Sprintf("%s Available Now in %s - %s", f.service, f.place, f.name),
			fmt.Sprintf("Need %s in %s right now? %s is available. %s %s",
				strings.ToLower(f.service), f.city, f.name, f.excerpt, f.cta)
	},
	5: func(f facts) (string, string) {
		lead := "Trusted"
		if f.topRated {
			lead = "Top-Rated"
		}
		return fmt.Sprintf("%s %s in %s - %s", lead, f.category.Name, f.place, f.name),
			fmt.Sprintf("Compare %s in %s. %s: %s %s",
				strings.ToLower(f.category.Plural), f.city, f.name, f.excerpt, f.cta)
	},
}

// Fallback builds deterministic metadata from record fields alone.
func Fallback(b *businessModel.Business, u *businessModel.Update, intent model.Intent) Content {
	idx := intent.Index()
	if idx < 0 {
		idx = model.IntentDirect.Index()
	}

	title, desc := fallbacks[idx](collectFacts(b, u))
	return Content{
		Title:       clamp(title, TitleMax),
		Description: clamp(desc, DescriptionMax),
		Source:      SourceFallback,
	}
}

func collectFacts(b *businessModel.Business, u *businessModel.Update) facts {
	cat := businessModel.LookupCategory(b.Category)
	f := facts{
		name:     strings.TrimSpace(b.Name),
		place:    b.CityRegion(),
		city:     b.Address.City,
		category: cat,
		service:  b.TopService(),
		topRated: b.Reviews != nil && b.Reviews.Count > 0 && b.Reviews.Average.GreaterThanOrEqual(topRatedThreshold),
	}
	if f.service == "" {
		f.service = cat.Name + " Services"
	}

	switch {
	case u != nil && strings.TrimSpace(u.Content) != "":
		f.hasUpdate = true
		f.excerpt = "\u201c" + excerpt(u.Content) + "\u201d"
	case b.Description != "":
		f.excerpt = excerpt(b.Description)
	default:
		f.excerpt = fmt.Sprintf("Serving %s.", f.place)
	}

	switch {
	case b.Phone != "":
		f.cta = fmt.Sprintf("Call %s today.", b.Phone)
	case b.Website != "":
		f.cta = fmt.Sprintf("Visit %s to learn more.", b.Website)
	default:
		f.cta = fmt.Sprintf("Visit us in %s today.", f.city)
	}
	return f
}

func excerpt(text string) string {
	return clamp(text, excerptLength)
}
