package render

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/urlpath"
)

const schemaContext = "https://schema.org"

type jsonObject = map[string]interface{}

// schemaInput is everything the structured data block is built from.
type schemaInput struct {
	data      model.PageData
	canonical string
	baseURL   string
	siteName  string
	times     Timestamps
	faqs      []FAQEntry
}

// buildSchema returns one JSON-LD document whose @graph is ordered
// entity, FAQ (when present), breadcrumb, page.
func buildSchema(in schemaInput) ([]byte, error) {
	b := &in.data.Business
	entityID := in.baseURL + businessPath(b) + "#business"

	graph := []interface{}{entitySchema(b, entityID)}
	if len(in.faqs) > 0 {
		graph = append(graph, faqSchema(in.faqs, in.canonical))
	}
	if crumbs := breadcrumbs(b, in.baseURL); len(crumbs) > 0 {
		graph = append(graph, breadcrumbSchema(crumbs, in.canonical))
	}
	graph = append(graph, pageSchema(in, entityID))

	return json.Marshal(jsonObject{
		"@context": schemaContext,
		"@graph":   graph,
	})
}

func entitySchema(b *businessModel.Business, id string) jsonObject {
	e := jsonObject{
		"@type": businessModel.SchemaTypeFor(b.Category),
		"@id":   id,
		"name":  b.Name,
	}
	setString(e, "description", b.Description)
	setString(e, "url", b.Website)
	setString(e, "telephone", b.Phone)
	setString(e, "email", b.Email)
	setString(e, "priceRange", b.PriceRange)
	setString(e, "areaServed", b.ServiceArea)

	addr := jsonObject{"@type": "PostalAddress"}
	setString(addr, "streetAddress", b.Address.Street)
	setString(addr, "addressLocality", b.Address.City)
	setString(addr, "addressRegion", b.Address.Region)
	setString(addr, "postalCode", b.Address.PostalCode)
	setString(addr, "addressCountry", b.Address.Country)
	if len(addr) > 1 {
		e["address"] = addr
	}

	if b.HasGeo() {
		e["geo"] = jsonObject{
			"@type":     "GeoCoordinates",
			"latitude":  *b.Latitude,
			"longitude": *b.Longitude,
		}
	}

	if spec := openingHoursSpecification(b.WeeklyHours); len(spec) > 0 {
		e["openingHoursSpecification"] = spec
	} else {
		setString(e, "openingHours", b.Hours)
	}

	if len(b.PaymentMethods) > 0 {
		e["paymentAccepted"] = strings.Join(b.PaymentMethods, ", ")
	}
	if len(b.Languages) > 0 {
		e["knowsLanguage"] = b.Languages
	}
	if len(b.Awards) > 0 {
		e["award"] = b.Awards
	}
	if len(b.Accessibility) > 0 {
		features := make([]jsonObject, len(b.Accessibility))
		for i, a := range b.Accessibility {
			features[i] = jsonObject{"@type": "LocationFeatureSpecification", "name": a, "value": true}
		}
		e["amenityFeature"] = features
	}
	if len(b.Certifications) > 0 {
		creds := make([]jsonObject, len(b.Certifications))
		for i, c := range b.Certifications {
			creds[i] = jsonObject{"@type": "EducationalOccupationalCredential", "name": c}
		}
		e["hasCredential"] = creds
	}
	if len(b.Services) > 0 {
		offers := make([]jsonObject, len(b.Services))
		for i, s := range b.Services {
			offers[i] = jsonObject{
				"@type":       "Offer",
				"itemOffered": jsonObject{"@type": "Service", "name": s},
			}
		}
		e["makesOffer"] = offers
	}
	if len(b.SocialLinks) > 0 {
		links := make([]string, 0, len(b.SocialLinks))
		for _, u := range b.SocialLinks {
			links = append(links, u)
		}
		sort.Strings(links)
		e["sameAs"] = links
	}
	if b.FoundedYear > 0 {
		e["foundingDate"] = strconv.Itoa(b.FoundedYear)
	}
	if b.Reviews != nil && b.Reviews.Count > 0 {
		e["aggregateRating"] = jsonObject{
			"@type":       "AggregateRating",
			"ratingValue": b.Reviews.Average.String(),
			"reviewCount": b.Reviews.Count,
			"bestRating":  "5",
		}
	}
	return e
}

func openingHoursSpecification(week []businessModel.DayHours) []jsonObject {
	var out []jsonObject
	for _, d := range week {
		if d.Closed || d.Open == "" || d.Close == "" || d.Day == "" {
			continue
		}
		out = append(out, jsonObject{
			"@type":     "OpeningHoursSpecification",
			"dayOfWeek": schemaContext + "/" + titleWord(d.Day),
			"opens":     d.Open,
			"closes":    d.Close,
		})
	}
	return out
}

func faqSchema(faqs []FAQEntry, canonical string) jsonObject {
	questions := make([]jsonObject, len(faqs))
	for i, f := range faqs {
		questions[i] = jsonObject{
			"@type": "Question",
			"name":  f.Question,
			"acceptedAnswer": jsonObject{
				"@type": "Answer",
				"text":  f.Answer,
			},
		}
	}
	return jsonObject{
		"@type":      "FAQPage",
		"@id":        canonical + "#faq",
		"mainEntity": questions,
	}
}

// crumb is one breadcrumb step.
type crumb struct {
	Name string
	URL  string
}

// breadcrumbs walks home, region, city, category, business.
func breadcrumbs(b *businessModel.Business, baseURL string) []crumb {
	country, region, city := urlpath.LocationSegments(b)
	crumbs := []crumb{{Name: "Home", URL: baseURL + "/"}}
	if region == "" {
		return crumbs
	}
	regionPath := "/" + country + "/" + region
	crumbs = append(crumbs, crumb{Name: b.Address.Region, URL: baseURL + regionPath})
	if city == "" {
		return crumbs
	}
	cityPath := regionPath + "/" + city
	crumbs = append(crumbs,
		crumb{Name: b.Address.City, URL: baseURL + cityPath},
		crumb{Name: businessModel.LookupCategory(b.Category).Plural, URL: baseURL + cityPath + "/" + urlpath.CategorySegment(b)},
	)
	if slug := urlpath.BusinessSlug(b); slug != "" {
		crumbs = append(crumbs, crumb{Name: b.Name, URL: baseURL + cityPath + "/" + slug})
	}
	return crumbs
}

func breadcrumbSchema(crumbs []crumb, canonical string) jsonObject {
	items := make([]jsonObject, len(crumbs))
	for i, c := range crumbs {
		items[i] = jsonObject{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     c.URL,
		}
	}
	return jsonObject{
		"@type":           "BreadcrumbList",
		"@id":             canonical + "#breadcrumb",
		"itemListElement": items,
	}
}

func pageSchema(in schemaInput, entityID string) jsonObject {
	p := jsonObject{
		"@type":      "WebPage",
		"@id":        in.canonical,
		"url":        in.canonical,
		"name":       in.data.SEO.Title,
		"inLanguage": "en-US",
		"about":      jsonObject{"@id": entityID},
		"speakable": jsonObject{
			"@type":       "SpeakableSpecification",
			"cssSelector": []string{"h1", ".voice-answer"},
		},
	}
	setString(p, "description", in.data.SEO.Description)
	if !in.times.Published.IsZero() {
		p["datePublished"] = in.times.Published.UTC().Format(time.RFC3339)
	}
	if !in.times.Modified.IsZero() {
		p["dateModified"] = in.times.Modified.UTC().Format(time.RFC3339)
	}
	if in.siteName != "" {
		p["isPartOf"] = jsonObject{"@type": "WebSite", "name": in.siteName, "url": in.baseURL + "/"}
	}
	if u := in.data.Update; u != nil && len(u.Tags) > 0 {
		p["keywords"] = strings.Join(u.Tags, ", ")
	}
	return p
}

func businessPath(b *businessModel.Business) string {
	country, region, city := urlpath.LocationSegments(b)
	return "/" + strings.Join([]string{country, region, city, urlpath.BusinessSlug(b)}, "/")
}

func setString(obj jsonObject, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		obj[key] = v
	}
}

func titleWord(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
