package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/codec"
	"pagesmith-backend/internal/domains/page/freshness"
	"pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/domains/page/render"
	"pagesmith-backend/internal/domains/page/urlpath"
)

// ========================================
// RENDER
// ========================================

type RenderCmd struct {
	Intent   string `required:"" help:"Page intent (direct, local, category, branded-local, service-urgent, competitive)"`
	In       string `required:"" type:"existingfile" help:"Compact page data JSON file"`
	Out      string `short:"o" help:"Write HTML here instead of stdout"`
	SiteName string `default:"Local Updates" help:"Site name used in titles and breadcrumbs"`
	BaseURL  string `default:"https://localhost:8080" help:"Public base URL for canonical links"`
	TimeZone string `default:"UTC" help:"Zone for businesses without one, e.g. America/Los_Angeles"`
}

func (c *RenderCmd) Run(g *Globals) error {
	intent, err := model.ParseIntent(c.Intent)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.In)
	if err != nil {
		return fmt.Errorf("read page data: %w", err)
	}
	pd, err := codec.Unmarshal(data)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("time zone: %w", err)
	}
	engine, err := render.NewEngine(render.Site{Name: c.SiteName, BaseURL: c.BaseURL}, render.WithLocation(loc))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	html, err := engine.Render(intent, pd, render.Timestamps{Published: now, Modified: now})
	if err != nil {
		return err
	}
	log.Debug().Str("intent", string(intent)).Int("bytes", len(html)).Msg("rendered")

	if c.Out == "" {
		_, err = g.out.Write(html)
		return err
	}
	return os.WriteFile(c.Out, html, 0o644)
}

// ========================================
// TAGS
// ========================================

type TagsCmd struct {
	Text string    `arg:"" help:"Update text"`
	Now  time.Time `help:"Reference time (RFC3339), defaults to now"`
}

func (c *TagsCmd) Run(g *Globals) error {
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}
	return writeJSON(g, freshness.Tag(c.Text, now))
}

// ========================================
// SLUG
// ========================================

type SlugCmd struct {
	Intent   string `required:"" help:"Page intent"`
	Name     string `required:"" help:"Business name"`
	City     string `required:"" help:"Business city"`
	Region   string `required:"" help:"Business region, e.g. WA"`
	Country  string `help:"Country code" default:"us"`
	Category string `help:"Category taxonomy key"`
	Text     string `help:"Update text the slug is derived from"`
	AISlug   string `name:"ai-slug" help:"Suggested slug to try first"`
}

func (c *SlugCmd) Run(g *Globals) error {
	intent, err := model.ParseIntent(c.Intent)
	if err != nil {
		return err
	}

	res, err := urlpath.Build(urlpath.Input{
		UpdateText: c.Text,
		Intent:     intent,
		Business: &businessModel.Business{
			Name:     c.Name,
			Category: c.Category,
			Address:  businessModel.Address{City: c.City, Region: c.Region, Country: c.Country},
		},
		AISlug: c.AISlug,
		Now:    time.Now(),
	})
	if err != nil {
		return err
	}
	return writeJSON(g, res)
}

func writeJSON(g *Globals, v any) error {
	enc := json.NewEncoder(g.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
