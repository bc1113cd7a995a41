package service

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	pageRepo "pagesmith-backend/internal/domains/page/repository"
)

// Static artifact keys
const (
	SitemapKey = "sitemap.xml"
	RobotsKey  = "robots.txt"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeXML  = "application/xml; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// aiCrawlers are explicitly allowed in robots.txt.
var aiCrawlers = []string{
	"GPTBot",
	"ChatGPT-User",
	"OAI-SearchBot",
	"ClaudeBot",
	"Claude-User",
	"Claude-SearchBot",
	"anthropic-ai",
	"PerplexityBot",
	"Perplexity-User",
	"Google-Extended",
	"Applebot-Extended",
	"CCBot",
	"Bingbot",
	"Googlebot",
}

// ObjectKey maps a page path to its storage key.
func ObjectKey(filePath string) string {
	return strings.Trim(filePath, "/") + "/index.html"
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// BuildSitemap lists every published page once, keeping its most recent
// modification time.
func BuildSitemap(baseURL string, pages []pageRepo.PublishedPath) ([]byte, error) {
	latest := make(map[string]time.Time, len(pages))
	order := make([]string, 0, len(pages))
	for _, p := range pages {
		prev, seen := latest[p.FilePath]
		if !seen {
			order = append(order, p.FilePath)
		}
		if !seen || p.LastModified.After(prev) {
			latest[p.FilePath] = p.LastModified
		}
	}

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, path := range order {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        baseURL + path,
			LastMod:    latest[path].UTC().Format(time.RFC3339),
			ChangeFreq: "daily",
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// BuildRobots allows known AI crawlers and points at the sitemap.
func BuildRobots(baseURL string) []byte {
	var b strings.Builder
	for _, agent := range aiCrawlers {
		fmt.Fprintf(&b, "User-agent: %s\nAllow: /\n\n", agent)
	}
	b.WriteString("User-agent: *\nAllow: /\n\n")
	fmt.Fprintf(&b, "Sitemap: %s/%s\n", baseURL, SitemapKey)
	return []byte(b.String())
}

// InjectDiscoveryMeta adds crawler directives and live-URL tags to a
// rendered document right before </head>.
func InjectDiscoveryMeta(doc []byte, liveURL string, publishedAt time.Time) []byte {
	const marker = "</head>"
	idx := bytes.Index(doc, []byte(marker))
	if idx < 0 {
		return doc
	}

	u := html.EscapeString(liveURL)
	ts := publishedAt.UTC().Format(time.RFC3339)

	var meta strings.Builder
	meta.WriteString(`<meta name="googlebot" content="index, follow, max-snippet:-1, max-image-preview:large">` + "\n")
	meta.WriteString(`<meta name="bingbot" content="index, follow, max-snippet:-1">` + "\n")
	fmt.Fprintf(&meta, `<meta property="og:updated_time" content="%s">`+"\n", ts)
	fmt.Fprintf(&meta, `<meta name="citation_public_url" content="%s">`+"\n", u)
	fmt.Fprintf(&meta, `<link rel="alternate" hreflang="x-default" href="%s">`+"\n", u)

	out := make([]byte, 0, len(doc)+meta.Len())
	out = append(out, doc[:idx]...)
	out = append(out, meta.String()...)
	out = append(out, doc[idx:]...)
	return out
}
