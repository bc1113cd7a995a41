// Package codec converts canonical page data to and from the short-keyed
// form stored in pages.page_data.
package codec

import (
	"time"

	"github.com/shopspring/decimal"
)

// Compact is the on-disk page data. Every field is optional and absent
// values are omitted rather than written as null.
type Compact struct {
	B   *CompactBusiness `json:"b,omitempty"`
	U   *CompactUpdate   `json:"u,omitempty"`
	SEO *CompactSEO      `json:"seo,omitempty"`
	I   *CompactIntent   `json:"i,omitempty"`
	F   []CompactFAQ     `json:"f,omitempty"`
}

type CompactBusiness struct {
	ID string `json:"id,omitempty"`
	N  string `json:"n,omitempty"`  // name
	Sl string `json:"sl,omitempty"` // slug
	C  string `json:"c,omitempty"`  // category

	A  string `json:"a,omitempty"`  // street
	Ci string `json:"ci,omitempty"` // city
	R  string `json:"r,omitempty"`  // region
	Z  string `json:"z,omitempty"`  // postal code
	Co string `json:"co,omitempty"` // country

	P string `json:"p,omitempty"` // phone
	E string `json:"e,omitempty"` // email
	W string `json:"w,omitempty"` // website

	D  string            `json:"d,omitempty"`  // description
	S  []string          `json:"s,omitempty"`  // services
	Sp []string          `json:"sp,omitempty"` // specialties
	H  string            `json:"h,omitempty"`  // hours
	Wh []CompactDay      `json:"wh,omitempty"` // weekly hours
	Pr string            `json:"pr,omitempty"` // price range
	Pm []string          `json:"pm,omitempty"` // payment methods
	L  []string          `json:"l,omitempty"`  // languages
	Ac []string          `json:"ac,omitempty"` // accessibility
	Sa string            `json:"sa,omitempty"` // service area
	Aw []string          `json:"aw,omitempty"` // awards
	Ce []string          `json:"ce,omitempty"` // certifications
	Sm map[string]string `json:"sm,omitempty"` // social links
	Fy int               `json:"fy,omitempty"` // founded year
	Fq []CompactFAQ      `json:"fq,omitempty"`

	Lat *float64        `json:"lat,omitempty"`
	Lng *float64        `json:"lng,omitempty"`
	Rv  *CompactReviews `json:"rv,omitempty"`
	So  string          `json:"so,omitempty"` // status override
	Tz  string          `json:"tz,omitempty"` // IANA time zone
}

type CompactDay struct {
	D string `json:"d"`
	O string `json:"o,omitempty"`
	C string `json:"c,omitempty"`
	X bool   `json:"x,omitempty"` // closed all day
}

type CompactReviews struct {
	N int             `json:"n,omitempty"`
	A decimal.Decimal `json:"a"`
}

type CompactUpdate struct {
	ID string       `json:"id,omitempty"`
	Bi string       `json:"bi,omitempty"` // business id
	C  string       `json:"c,omitempty"`  // content
	Ca *time.Time   `json:"ca,omitempty"` // created at
	Ex *time.Time   `json:"ex,omitempty"` // expires at
	Sh string       `json:"sh,omitempty"` // special hours
	Dt string       `json:"dt,omitempty"` // deal terms
	Cg string       `json:"cg,omitempty"` // category
	Fq []CompactFAQ `json:"fq,omitempty"`
	St string       `json:"st,omitempty"` // status
	T  []string     `json:"t,omitempty"`  // freshness tags
	Tx *time.Time   `json:"tx,omitempty"` // tags expire at
}

type CompactSEO struct {
	T string `json:"t,omitempty"`
	D string `json:"d,omitempty"`
}

type CompactIntent struct {
	T string `json:"t,omitempty"` // intent type
	P string `json:"p,omitempty"` // file path
	S string `json:"s,omitempty"` // slug
	V string `json:"v,omitempty"` // page variant
}

type CompactFAQ struct {
	Q string `json:"q,omitempty"`
	A string `json:"a,omitempty"`
}
