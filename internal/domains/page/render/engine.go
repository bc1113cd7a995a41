// Package render turns canonical page data into self-contained HTML
// documents with structured data and voice-search fragments.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Site describes where rendered pages live.
type Site struct {
	Name    string
	BaseURL string // scheme://host, no trailing slash
}

// Timestamps carried into the page schema and footer.
type Timestamps struct {
	Published time.Time
	Modified  time.Time
}

type listKind int

const (
	listServices listKind = iota
	listSpecialties
	listAwards
	listCertifications
)

// intentRenderer is the per-intent part of a page.
type intentRenderer struct {
	body    string
	heading func(b *businessModel.Business, cat businessModel.Category) (title, subtitle string)
	lists   []listKind
	// updateLabel titles the update section.
	updateLabel func(b *businessModel.Business) string
	// areaFraming adds the served-area line before the update.
	areaFraming    bool
	emphasizePhone bool
}

func currentUpdate(*businessModel.Business) string { return "Current Update" }

// renderers holds exactly one entry per intent; a repeated index does not compile.
var renderers = [model.IntentCount]intentRenderer{
	0: { // direct
		body: "body-direct",
		heading: func(b *businessModel.Business, _ businessModel.Category) (string, string) {
			return b.Name, "Current Update"
		},
		updateLabel: currentUpdate,
	},
	1: { // local
		body: "body-local",
		heading: func(b *businessModel.Business, cat businessModel.Category) (string, string) {
			return fmt.Sprintf("%s in %s", cat.Name, b.CityRegion()), b.Name
		},
		updateLabel: currentUpdate,
		areaFraming: true,
	},
	2: { // category
		body: "body-category",
		heading: func(b *businessModel.Business, cat businessModel.Category) (string, string) {
			return fmt.Sprintf("Professional %s in %s", cat.Plural, b.CityRegion()), b.Name
		},
		lists:       []listKind{listSpecialties, listServices, listAwards},
		updateLabel: currentUpdate,
	},
	3: { // branded-local
		body: "body-branded-local",
		heading: func(b *businessModel.Business, cat businessModel.Category) (string, string) {
			return strings.TrimSpace(b.Name + " " + b.Address.City), fmt.Sprintf("%s in %s", cat.Name, b.CityRegion())
		},
		updateLabel: func(b *businessModel.Business) string { return "Latest from " + b.Name },
	},
	4: { // service-urgent
		body: "body-service-urgent",
		heading: func(b *businessModel.Business, cat businessModel.Category) (string, string) {
			service := b.TopService()
			if service == "" {
				service = cat.Name
			}
			sub := b.Name
			if b.Phone != "" {
				sub = fmt.Sprintf("%s · Call %s", b.Name, b.Phone)
			}
			return fmt.Sprintf("%s Available Now in %s", service, b.Address.City), sub
		},
		updateLabel:    currentUpdate,
		emphasizePhone: true,
	},
	5: { // competitive
		body: "body-competitive",
		heading: func(b *businessModel.Business, cat businessModel.Category) (string, string) {
			return fmt.Sprintf("Leading %s in %s", cat.Plural, b.CityRegion()), b.Name
		},
		lists:       []listKind{listAwards, listCertifications, listSpecialties},
		updateLabel: currentUpdate,
	},
}

// Engine renders pages. It is safe for concurrent use.
type Engine struct {
	site      Site
	now       func() time.Time
	loc       *time.Location
	templates [model.IntentCount]*template.Template
}

type Option func(*Engine)

// WithClock overrides the clock used for "open now" answers.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the zone for businesses that carry no time zone.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func NewEngine(site Site, opts ...Option) (*Engine, error) {
	e := &Engine{
		site: Site{Name: site.Name, BaseURL: strings.TrimRight(site.BaseURL, "/")},
		now:  time.Now,
		loc:  time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}

	base, err := template.New("layout").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	for i, r := range renderers {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone templates: %w", err)
		}
		if _, err := t.New("body").Parse(`{{template "` + r.body + `" .}}`); err != nil {
			return nil, fmt.Errorf("bind %s body: %w", r.body, err)
		}
		e.templates[i] = t
	}
	return e, nil
}

// Render produces the HTML document for one page.
func (e *Engine) Render(intent model.Intent, pd model.PageData, ts Timestamps) ([]byte, error) {
	idx := intent.Index()
	if idx < 0 {
		return nil, model.NewInvalidIntent(string(intent))
	}

	v, err := e.buildView(renderers[idx], intent, pd, ts)
	if err != nil {
		return nil, model.NewRenderPageError(err)
	}

	var buf bytes.Buffer
	if err := e.templates[idx].ExecuteTemplate(&buf, "layout", v); err != nil {
		return nil, model.NewRenderPageError(err)
	}
	return buf.Bytes(), nil
}

// ========================================
// VIEW MODEL
// ========================================

type view struct {
	Lang        string
	Intent      string
	Title       string
	Description string
	Canonical   string
	SiteName    string
	Keywords    string
	Geo         *geoView
	JSONLD      template.JS

	Heading    string
	Subheading string
	AreaServed string

	Breadcrumbs []crumb
	Update      *updateView
	Contact     *contactView
	Details     []detailView
	WeeklyHours []dayView
	Lists       []listView
	FAQs        []FAQEntry
	Voice       []VoiceAnswer

	ModifiedISO   string
	ModifiedHuman string
}

type geoView struct {
	Region    string
	Placename string
	Position  string
	ICBM      string
}

type badgeView struct {
	Key   string
	Label string
}

type updateView struct {
	Label        string
	HTML         template.HTML
	Tags         []badgeView
	SpecialHours string
	DealTerms    string
	PostedISO    string
	PostedHuman  string
}

type contactView struct {
	AddressLines   []string
	Phone          string
	PhoneHref      template.URL
	Email          string
	MailtoHref     string
	Website        string
	EmphasizePhone bool
	HasList        bool
}

type detailView struct {
	Label string
	Value string
}

type dayView struct {
	Day  string
	Text string
}

type listView struct {
	Key   string
	Title string
	Items []string
}

func (e *Engine) buildView(r intentRenderer, intent model.Intent, pd model.PageData, ts Timestamps) (*view, error) {
	b := &pd.Business
	cat := businessModel.LookupCategory(b.Category)
	heading, sub := r.heading(b, cat)

	canonical := e.site.BaseURL + pd.Intent.FilePath
	answers := VoiceAnswers(b, LocalTime(b, e.now(), e.loc))
	faqs := MergeFAQs(pd, answers)

	v := &view{
		Lang:        "en",
		Intent:      string(intent),
		Title:       firstNonEmpty(pd.SEO.Title, heading),
		Description: pd.SEO.Description,
		Canonical:   canonical,
		SiteName:    e.site.Name,
		Geo:         geoMeta(b),
		Heading:     heading,
		Subheading:  sub,
		Breadcrumbs: breadcrumbs(b, e.site.BaseURL),
		Contact:     contactSection(b, r.emphasizePhone),
		Details:     detailsSection(b),
		WeeklyHours: weeklyHours(b.WeeklyHours),
		FAQs:        faqs,
		Voice:       answers,
	}
	if pd.Update != nil && len(pd.Update.Tags) > 0 {
		v.Keywords = strings.Join(pd.Update.Tags, ", ")
	}
	if r.areaFraming {
		v.AreaServed = "Serving customers in " + firstNonEmpty(strings.TrimSuffix(b.ServiceArea, "."), b.CityRegion()) + "."
	}
	for _, k := range r.lists {
		if l, ok := listSection(b, k); ok {
			v.Lists = append(v.Lists, l)
		}
	}
	if !ts.Modified.IsZero() {
		v.ModifiedISO = ts.Modified.UTC().Format(time.RFC3339)
		v.ModifiedHuman = ts.Modified.UTC().Format("January 2, 2006")
	}

	if pd.Update != nil && strings.TrimSpace(pd.Update.Content) != "" {
		uv, err := updateSection(pd.Update, r.updateLabel(b))
		if err != nil {
			return nil, err
		}
		v.Update = uv
	}

	ld, err := buildSchema(schemaInput{
		data:      pd,
		canonical: canonical,
		baseURL:   e.site.BaseURL,
		siteName:  e.site.Name,
		times:     ts,
		faqs:      faqs,
	})
	if err != nil {
		return nil, fmt.Errorf("structured data: %w", err)
	}
	v.JSONLD = template.JS(ld) //nolint:gosec // json.Marshal escapes <, > and &

	return v, nil
}

func updateSection(u *businessModel.Update, label string) (*updateView, error) {
	body, err := markdownToHTML(u.Content)
	if err != nil {
		return nil, fmt.Errorf("update markdown: %w", err)
	}
	uv := &updateView{
		Label:        label,
		HTML:         body,
		SpecialHours: u.SpecialHours,
		DealTerms:    u.DealTerms,
	}
	for _, t := range u.Tags {
		uv.Tags = append(uv.Tags, badgeView{Key: t, Label: strings.ReplaceAll(t, "-", " ")})
	}
	if !u.CreatedAt.IsZero() {
		uv.PostedISO = u.CreatedAt.UTC().Format(time.RFC3339)
		uv.PostedHuman = u.CreatedAt.UTC().Format("January 2, 2006")
	}
	return uv, nil
}

var nonDial = regexp.MustCompile(`[^0-9+]`)

func contactSection(b *businessModel.Business, emphasizePhone bool) *contactView {
	c := &contactView{
		Phone:          b.Phone,
		Email:          b.Email,
		Website:        b.Website,
		EmphasizePhone: emphasizePhone && b.Phone != "",
	}
	if street := strings.TrimSpace(b.Address.Street); street != "" {
		c.AddressLines = append(c.AddressLines, street)
	}
	cityLine := joinNonEmpty(" ", b.CityRegion(), b.Address.PostalCode)
	if cityLine != "" {
		c.AddressLines = append(c.AddressLines, cityLine)
	}
	if digits := nonDial.ReplaceAllString(b.Phone, ""); digits != "" {
		c.PhoneHref = template.URL("tel:" + digits) //nolint:gosec // digits and + only
	}
	if b.Email != "" {
		c.MailtoHref = "mailto:" + b.Email
	}
	c.HasList = (c.Phone != "" && !c.EmphasizePhone) || c.Email != "" || c.Website != ""

	if len(c.AddressLines) == 0 && c.Phone == "" && c.Email == "" && c.Website == "" {
		return nil
	}
	return c
}

func detailsSection(b *businessModel.Business) []detailView {
	var out []detailView
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			out = append(out, detailView{Label: label, Value: v})
		}
	}
	if len(b.WeeklyHours) == 0 {
		add("Hours", b.Hours)
	}
	add("Price range", b.PriceRange)
	add("Payment", strings.Join(b.PaymentMethods, ", "))
	add("Languages", strings.Join(b.Languages, ", "))
	add("Accessibility", strings.Join(b.Accessibility, ", "))
	add("Service area", b.ServiceArea)
	if b.FoundedYear > 0 {
		add("Founded", fmt.Sprintf("%d", b.FoundedYear))
	}
	if b.Reviews != nil && b.Reviews.Count > 0 {
		add("Rating", fmt.Sprintf("%s out of 5 from %d reviews", b.Reviews.Average.StringFixed(1), b.Reviews.Count))
	}
	return out
}

func weeklyHours(week []businessModel.DayHours) []dayView {
	var out []dayView
	for _, d := range week {
		if d.Day == "" {
			continue
		}
		text := "Closed"
		if !d.Closed {
			open, ok1 := parseClock(d.Open)
			closing, ok2 := parseClock(d.Close)
			if !ok1 || !ok2 {
				continue
			}
			text = formatClock(open) + " – " + formatClock(closing)
		}
		out = append(out, dayView{Day: titleWord(d.Day), Text: text})
	}
	return out
}

func listSection(b *businessModel.Business, k listKind) (listView, bool) {
	var l listView
	switch k {
	case listServices:
		l = listView{Key: "services", Title: "Services", Items: b.Services}
	case listSpecialties:
		l = listView{Key: "specialties", Title: "Specialties", Items: b.Specialties}
	case listAwards:
		l = listView{Key: "awards", Title: "Awards & Recognition", Items: b.Awards}
	case listCertifications:
		l = listView{Key: "certifications", Title: "Certifications", Items: b.Certifications}
	}
	return l, len(l.Items) > 0
}

func geoMeta(b *businessModel.Business) *geoView {
	g := &geoView{Placename: b.Address.City}
	if b.Address.Region != "" {
		country := strings.ToUpper(firstNonEmpty(b.Address.Country, "US"))
		g.Region = country + "-" + strings.ToUpper(b.Address.Region)
	}
	if b.HasGeo() {
		g.Position = fmt.Sprintf("%.6f;%.6f", *b.Latitude, *b.Longitude)
		g.ICBM = fmt.Sprintf("%.6f, %.6f", *b.Latitude, *b.Longitude)
	}
	if *g == (geoView{}) {
		return nil
	}
	return g
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
