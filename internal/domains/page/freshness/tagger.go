// Package freshness derives short-lived discovery tags from update text.
package freshness

import (
	"regexp"
	"strings"
	"time"
)

// Tag names
const (
	TagUpdatedToday       = "updated-today"
	TagSpecialActive      = "special-active"
	TagLimitedTimeOffer   = "limited-time-offer"
	TagHappeningNow       = "happening-now"
	TagEmergencyAvailable = "emergency-available"
	TagImmediateService   = "immediate-service"
	TagTemporarilyClosed  = "temporarily-closed"
	TagHolidayHours       = "holiday-hours"
	TagEventToday         = "event-today"
	TagNewOfferings       = "new-offerings"
)

const (
	shortLived  = 24 * time.Hour
	defaultLife = 7 * 24 * time.Hour
)

// Result is the tag set for one update and the instant it stops applying.
type Result struct {
	Tags      []string  `json:"tags"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Has reports whether tag is in the result.
func (r Result) Has(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type rule struct {
	match func(text string) bool
	tags  []string
}

func words(pattern string) func(string) bool {
	re := regexp.MustCompile(`\b(` + pattern + `)\b`)
	return re.MatchString
}

var (
	closureWords   = words(`closed|closing|close early|shut|shutting`)
	closureContext = words(`temporarily|until|back|reopen|reopening`)
	urgentWords    = words(`emergency|urgent|asap|24-7|around the clock`)
)

// rules are evaluated in order; every match contributes its tags.
var rules = []rule{
	{words(`deals?|discounts?|sale|specials?|promo|promotion|coupon|bogo|clearance|\d{1,3}\s*%\s*off`), []string{TagSpecialActive, TagLimitedTimeOffer}},
	{words(`today|tonight|now|this weekend|weekend`), []string{TagHappeningNow}},
	{func(s string) bool { return urgentWords(s) || strings.Contains(s, "24/7") }, []string{TagEmergencyAvailable, TagImmediateService}},
	{func(s string) bool { return closureWords(s) && closureContext(s) }, []string{TagTemporarilyClosed}},
	{words(`holidays?|christmas|thanksgiving|new year'?s?|easter|labor day|memorial day|independence day`), []string{TagHolidayHours}},
	{words(`event|festival|concert|live music|workshop|class|tasting|party|celebration|fundraiser`), []string{TagEventToday}},
	{words(`new menu|new items?|launch|launching|introducing|now offering|now serving|grand opening`), []string{TagNewOfferings}},
}

// Tag computes the freshness tags for text as of now.
//
// Expiry: happening-now or special-active live 24 hours, event-today lives
// until the next local midnight, everything else lives 7 days.
func Tag(text string, now time.Time) Result {
	lower := strings.ToLower(text)

	tags := []string{TagUpdatedToday}
	for _, r := range rules {
		if r.match(lower) {
			tags = append(tags, r.tags...)
		}
	}

	res := Result{Tags: tags}
	switch {
	case res.Has(TagHappeningNow) || res.Has(TagSpecialActive):
		res.ExpiresAt = now.Add(shortLived)
	case res.Has(TagEventToday):
		res.ExpiresAt = nextMidnight(now)
	default:
		res.ExpiresAt = now.Add(defaultLife)
	}
	return res
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
