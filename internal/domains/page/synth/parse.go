package synth

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

type completion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

func (c completion) usable() bool {
	return strings.TrimSpace(c.Title) != "" && strings.TrimSpace(c.Description) != ""
}

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// Parse extracts title, description and slug from a completion.
// Strict JSON is tried first, then a lenient gjson read of the first
// object in the text, then field-by-field regex extraction.
func Parse(raw string) (Content, bool) {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	for _, parse := range []func(string) (completion, bool){parseStrict, parseLenient, parseRegex} {
		if c, ok := parse(text); ok && c.usable() {
			return Content{
				Title:       clamp(c.Title, TitleMax),
				Description: clamp(c.Description, DescriptionMax),
				Slug:        strings.TrimSpace(c.Slug),
			}, true
		}
	}
	return Content{}, false
}

func parseStrict(text string) (completion, bool) {
	var c completion
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return completion{}, false
	}
	return c, true
}

func parseLenient(text string) (completion, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return completion{}, false
	}
	obj := text[start : end+1]

	first := func(paths ...string) string {
		for _, p := range paths {
			if r := gjson.Get(obj, p); r.Exists() && r.Type == gjson.String {
				return r.String()
			}
		}
		return ""
	}
	return completion{
		Title:       first("title", "seo_title", "seoTitle", "seo.title"),
		Description: first("description", "meta_description", "metaDescription", "seo.description"),
		Slug:        first("slug", "url_slug", "urlSlug"),
	}, true
}

var fieldPatterns = map[string]*regexp.Regexp{
	"title":       regexp.MustCompile(`(?im)"?title"?\s*[:=]\s*"?([^"\n]+)"?`),
	"description": regexp.MustCompile(`(?im)"?description"?\s*[:=]\s*"?([^"\n]+)"?`),
	"slug":        regexp.MustCompile(`(?im)"?slug"?\s*[:=]\s*"?([a-z0-9-]+)"?`),
}

func parseRegex(text string) (completion, bool) {
	get := func(field string) string {
		m := fieldPatterns[field].FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		return strings.TrimRight(strings.TrimSpace(m[1]), `",`)
	}
	return completion{
		Title:       get("title"),
		Description: get("description"),
		Slug:        get("slug"),
	}, true
}

// clamp trims s and cuts it at the last word boundary within limit bytes.
func clamp(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	cut := s[:limit]
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:-")
}
