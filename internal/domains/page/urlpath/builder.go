// Package urlpath derives intent-aware slugs and canonical file paths for
// generated pages.
package urlpath

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/shared/utils"
)

const (
	// MaxSlugLength caps every content slug.
	MaxSlugLength = 50

	minAISlugLength = 6
	maxAISlugLength = 80

	defaultCountry  = "us"
	defaultCategory = "local-business"
	fallbackSlug    = "latest-update"
)

// Input carries everything needed to place one page.
type Input struct {
	UpdateText string
	Intent     model.Intent
	Business   *businessModel.Business
	AISlug     string    // optional suggestion from the synthesizer
	Now        time.Time // used for year-stamped competitive slugs
}

// Result is the placement of a page.
type Result struct {
	FilePath    string `json:"file_path"`
	Slug        string `json:"slug"`
	PageVariant string `json:"page_variant"`
}

var pageVariants = [model.IntentCount]string{
	0: "brand-update",
	1: "near-me",
	2: "category-service",
	3: "brand-local",
	4: "urgent-availability",
	5: "top-rated",
}

// ValidateBusiness checks the fields every page URL needs.
// The returned error lists all missing fields at once.
func ValidateBusiness(b *businessModel.Business) error {
	if b == nil {
		return model.NewMissingURLFields([]string{"name", "address_city", "address_region"})
	}

	errs := validation.Errors{
		"name":           validation.Validate(strings.TrimSpace(b.Name), validation.Required),
		"address_city":   validation.Validate(strings.TrimSpace(b.Address.City), validation.Required),
		"address_region": validation.Validate(strings.TrimSpace(b.Address.Region), validation.Required),
	}.Filter()
	if errs == nil {
		return nil
	}

	fields := make([]string, 0, 3)
	for field := range errs.(validation.Errors) {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return model.NewMissingURLFields(fields)
}

// Build places a page for the given intent.
func Build(in Input) (Result, error) {
	if !in.Intent.Valid() {
		return Result{}, model.NewInvalidIntent(string(in.Intent))
	}
	if err := ValidateBusiness(in.Business); err != nil {
		return Result{}, err
	}

	slug := aiSlug(in.AISlug)
	if slug == "" {
		slug = semanticSlug(in)
	}

	return Result{
		FilePath:    FilePath(in.Business, in.Intent, slug),
		Slug:        slug,
		PageVariant: pageVariants[in.Intent.Index()],
	}, nil
}

// FilePath assembles the canonical path for a slug.
//
//	direct, branded-local: /country/region/city/business-slug/slug
//	everything else:       /country/region/city/category/slug
func FilePath(b *businessModel.Business, intent model.Intent, slug string) string {
	segment := CategorySegment(b)
	if intent.RoutesUnderBusiness() {
		segment = BusinessSlug(b)
	}

	country, region, city := LocationSegments(b)
	return "/" + strings.Join([]string{country, region, city, segment, slug}, "/")
}

// LocationSegments returns the slugged country, region and city.
func LocationSegments(b *businessModel.Business) (country, region, city string) {
	country = utils.GenerateSlug(b.Address.Country)
	if country == "" {
		country = defaultCountry
	}
	return country, utils.GenerateSlug(b.Address.Region), utils.GenerateSlug(b.Address.City)
}

// BusinessSlug prefers the stored slug and falls back to the name.
func BusinessSlug(b *businessModel.Business) string {
	if s := utils.GenerateSlug(b.Slug); s != "" {
		return s
	}
	return utils.GenerateSlug(b.Name)
}

func CategorySegment(b *businessModel.Business) string {
	if s := utils.GenerateSlug(b.Category); s != "" {
		return s
	}
	return defaultCategory
}

func aiSlug(suggestion string) string {
	s := strings.TrimSpace(suggestion)
	if len(s) < minAISlugLength || len(s) > maxAISlugLength {
		return ""
	}
	return utils.NormalizeSlug(s, MaxSlugLength)
}

// ========================================
// SEMANTIC KEYWORDS
// ========================================

type keywordRule struct {
	pattern *regexp.Regexp
	keyword func(match []string) string
}

func fixed(kw string) func([]string) string {
	return func([]string) string { return kw }
}

var offerRules = []keywordRule{
	{regexp.MustCompile(`(\d{1,3})\s*%\s*off`), func(m []string) string { return m[1] + "-percent-off" }},
	{regexp.MustCompile(`\$\s?(\d+)\s*off`), func(m []string) string { return m[1] + "-dollars-off" }},
	{regexp.MustCompile(`\b(bogo|buy one,? get one)\b`), fixed("bogo-deal")},
	{regexp.MustCompile(`\bhappy hour\b`), fixed("happy-hour")},
	{regexp.MustCompile(`\b(sale|discount|deal|deals|special|specials|promo|promotion|clearance)\b`), fixed("special-offer")},
}

var launchRules = []keywordRule{
	{regexp.MustCompile(`\bgrand opening\b`), fixed("grand-opening")},
	{regexp.MustCompile(`\bnew menu\b`), fixed("new-menu")},
	{regexp.MustCompile(`\bnow open\b`), fixed("now-open")},
	{regexp.MustCompile(`\b(launch|launching|introducing|new)\b`), fixed("new")},
}

var seasonalRules = []keywordRule{
	{regexp.MustCompile(`\bblack friday\b`), fixed("black-friday")},
	{regexp.MustCompile(`\bnew year'?s?\b`), fixed("new-year")},
	{regexp.MustCompile(`\bvalentine'?s?\b`), fixed("valentines")},
	{regexp.MustCompile(`\b(christmas|thanksgiving|halloween|easter)\b`), func(m []string) string { return m[1] }},
	{regexp.MustCompile(`\b(spring|summer|winter)\b`), func(m []string) string { return m[1] }},
	{regexp.MustCompile(`\b(fall|autumn)\b`), fixed("fall")},
	{regexp.MustCompile(`\bholidays?\b`), fixed("holiday")},
}

var temporalRules = []keywordRule{
	{regexp.MustCompile(`\btonight\b`), fixed("tonight")},
	{regexp.MustCompile(`\btoday\b`), fixed("today")},
	{regexp.MustCompile(`\btomorrow\b`), fixed("tomorrow")},
	{regexp.MustCompile(`\b(this )?weekend\b`), fixed("this-weekend")},
	{regexp.MustCompile(`\bthis week\b`), fixed("this-week")},
}

var (
	emergencyPattern = regexp.MustCompile(`\b(emergency|urgent|asap)\b`)
	allHoursPattern  = regexp.MustCompile(`\b(24/7|24-7|24 hours|around the clock)`)
)

// firstMatch returns the keyword of the first rule that matches text.
func firstMatch(rules []keywordRule, text string) string {
	for _, r := range rules {
		if m := r.pattern.FindStringSubmatch(text); m != nil {
			return r.keyword(m)
		}
	}
	return ""
}

// Keywords extracts semantic keywords from update text in the order
// offer, launch, seasonal, temporal.
func Keywords(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, rules := range [][]keywordRule{offerRules, launchRules, seasonalRules, temporalRules} {
		if kw := firstMatch(rules, lower); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// serviceHint is a short slug from the top service or the category name.
func serviceHint(b *businessModel.Business) string {
	hint := b.TopService()
	if hint == "" {
		hint = businessModel.LookupCategory(b.Category).Name
	}
	words := strings.Split(utils.GenerateSlug(hint), "-")
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, "-")
}

func semanticSlug(in Input) string {
	b := in.Business
	lower := strings.ToLower(in.UpdateText)
	keywords := Keywords(in.UpdateText)
	service := serviceHint(b)
	city := utils.GenerateSlug(b.Address.City)

	var tokens []string
	switch in.Intent {
	case model.IntentDirect:
		tokens = keywords
	case model.IntentBrandedLocal:
		tokens = append(append(tokens, keywords...), city)
	case model.IntentLocal:
		tokens = append(append([]string{service}, keywords...), "near-me")
	case model.IntentCategory:
		tokens = append(append([]string{service}, keywords...), city)
	case model.IntentServiceUrgent:
		if emergencyPattern.MatchString(lower) {
			tokens = append(tokens, "emergency")
		}
		tokens = append(tokens, service)
		if allHoursPattern.MatchString(lower) {
			tokens = append(tokens, "available-24-7")
		} else {
			tokens = append(tokens, "available-now")
		}
	case model.IntentCompetitive:
		tokens = []string{"top-rated", service, city, strconv.Itoa(in.Now.Year())}
	}

	slug := utils.TruncateSlug(joinUnique(tokens), MaxSlugLength)
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// joinUnique joins non-empty tokens with hyphens, dropping repeated words.
func joinUnique(tokens []string) string {
	seen := make(map[string]bool)
	var words []string
	for _, tok := range tokens {
		for _, w := range strings.Split(utils.GenerateSlug(tok), "-") {
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			words = append(words, w)
		}
	}
	return strings.Join(words, "-")
}
