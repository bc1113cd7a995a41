package codec

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
)

// Defaults applied by Expand when the compact form has no value.
const DefaultCountry = "US"

var DefaultPaymentMethods = []string{"Cash", "Credit Card"}

// ========================================
// COMPRESS
// ========================================

// Compress maps canonical page data to its compact form, dropping every
// empty value.
func Compress(pd model.PageData) Compact {
	c := Compact{
		B: compressBusiness(&pd.Business),
		F: compressFAQs(pd.FAQs),
	}
	if pd.Update != nil {
		c.U = compressUpdate(pd.Update)
	}
	if pd.SEO != (model.SEO{}) {
		c.SEO = &CompactSEO{T: pd.SEO.Title, D: pd.SEO.Description}
	}
	if pd.Intent != (model.IntentInfo{}) {
		c.I = &CompactIntent{
			T: string(pd.Intent.Type),
			P: pd.Intent.FilePath,
			S: pd.Intent.Slug,
			V: pd.Intent.PageVariant,
		}
	}
	return c
}

func compressBusiness(b *businessModel.Business) *CompactBusiness {
	cb := &CompactBusiness{
		ID: idString(b.ID),
		N:  b.Name,
		Sl: b.Slug,
		C:  b.Category,
		A:  b.Address.Street,
		Ci: b.Address.City,
		R:  b.Address.Region,
		Z:  b.Address.PostalCode,
		Co: b.Address.Country,
		P:  b.Phone,
		E:  b.Email,
		W:  b.Website,
		D:  b.Description,
		S:  nonEmpty(b.Services),
		Sp: nonEmpty(b.Specialties),
		H:  b.Hours,
		Pr: b.PriceRange,
		Pm: nonEmpty(b.PaymentMethods),
		L:  nonEmpty(b.Languages),
		Ac: nonEmpty(b.Accessibility),
		Sa: b.ServiceArea,
		Aw: nonEmpty(b.Awards),
		Ce: nonEmpty(b.Certifications),
		Fy: b.FoundedYear,
		Fq: compressFAQs(b.FAQs),
		So: b.StatusOverride,
		Tz: b.TimeZone,
	}
	for _, d := range b.WeeklyHours {
		cb.Wh = append(cb.Wh, CompactDay{D: d.Day, O: d.Open, C: d.Close, X: d.Closed})
	}
	if len(b.SocialLinks) > 0 {
		cb.Sm = make(map[string]string, len(b.SocialLinks))
		for k, v := range b.SocialLinks {
			if v != "" {
				cb.Sm[k] = v
			}
		}
		if len(cb.Sm) == 0 {
			cb.Sm = nil
		}
	}
	if b.HasGeo() {
		lat, lng := *b.Latitude, *b.Longitude
		cb.Lat, cb.Lng = &lat, &lng
	}
	if b.Reviews != nil && (b.Reviews.Count > 0 || !b.Reviews.Average.IsZero()) {
		cb.Rv = &CompactReviews{N: b.Reviews.Count, A: b.Reviews.Average}
	}

	if isEmptyBusiness(cb) {
		return nil
	}
	return cb
}

func compressUpdate(u *businessModel.Update) *CompactUpdate {
	return &CompactUpdate{
		ID: idString(u.ID),
		Bi: idString(u.BusinessID),
		C:  u.Content,
		Ca: timePtr(u.CreatedAt),
		Ex: copyTime(u.ExpiresAt),
		Sh: u.SpecialHours,
		Dt: u.DealTerms,
		Cg: u.Category,
		Fq: compressFAQs(u.FAQs),
		St: u.Status,
		T:  nonEmpty(u.Tags),
		Tx: copyTime(u.TagsExpireAt),
	}
}

func compressFAQs(faqs []businessModel.FAQ) []CompactFAQ {
	var out []CompactFAQ
	for _, f := range faqs {
		if f.Question == "" && f.Answer == "" {
			continue
		}
		out = append(out, CompactFAQ{Q: f.Question, A: f.Answer})
	}
	return out
}

// ========================================
// EXPAND
// ========================================

// Expand maps compact data back to the canonical shape. Payment methods
// and country fall back to defaults when absent.
func Expand(c Compact) model.PageData {
	var pd model.PageData

	if c.B != nil {
		pd.Business = expandBusiness(c.B)
	}
	if len(pd.Business.PaymentMethods) == 0 {
		pd.Business.PaymentMethods = append([]string(nil), DefaultPaymentMethods...)
	}
	if pd.Business.Address.Country == "" {
		pd.Business.Address.Country = DefaultCountry
	}

	if c.U != nil {
		pd.Update = expandUpdate(c.U)
	}
	if c.SEO != nil {
		pd.SEO = model.SEO{Title: c.SEO.T, Description: c.SEO.D}
	}
	if c.I != nil {
		pd.Intent = model.IntentInfo{
			Type:        model.Intent(c.I.T),
			FilePath:    c.I.P,
			Slug:        c.I.S,
			PageVariant: c.I.V,
		}
	}
	pd.FAQs = expandFAQs(c.F)
	return pd
}

func expandBusiness(cb *CompactBusiness) businessModel.Business {
	b := businessModel.Business{
		ID:       parseID(cb.ID),
		Name:     cb.N,
		Slug:     cb.Sl,
		Category: cb.C,
		Address: businessModel.Address{
			Street:     cb.A,
			City:       cb.Ci,
			Region:     cb.R,
			PostalCode: cb.Z,
			Country:    cb.Co,
		},
		Phone:          cb.P,
		Email:          cb.E,
		Website:        cb.W,
		Description:    cb.D,
		Services:       cb.S,
		Specialties:    cb.Sp,
		Hours:          cb.H,
		PriceRange:     cb.Pr,
		PaymentMethods: cb.Pm,
		Languages:      cb.L,
		Accessibility:  cb.Ac,
		ServiceArea:    cb.Sa,
		Awards:         cb.Aw,
		Certifications: cb.Ce,
		SocialLinks:    cb.Sm,
		FoundedYear:    cb.Fy,
		FAQs:           expandFAQs(cb.Fq),
		Latitude:       cb.Lat,
		Longitude:      cb.Lng,
		StatusOverride: cb.So,
		TimeZone:       cb.Tz,
	}
	for _, d := range cb.Wh {
		b.WeeklyHours = append(b.WeeklyHours, businessModel.DayHours{Day: d.D, Open: d.O, Close: d.C, Closed: d.X})
	}
	if cb.Rv != nil {
		b.Reviews = &businessModel.ReviewSummary{Count: cb.Rv.N, Average: cb.Rv.A}
	}
	return b
}

func expandUpdate(cu *CompactUpdate) *businessModel.Update {
	u := &businessModel.Update{
		ID:           parseID(cu.ID),
		BusinessID:   parseID(cu.Bi),
		Content:      cu.C,
		ExpiresAt:    cu.Ex,
		SpecialHours: cu.Sh,
		DealTerms:    cu.Dt,
		Category:     cu.Cg,
		FAQs:         expandFAQs(cu.Fq),
		Status:       cu.St,
		Tags:         cu.T,
		TagsExpireAt: cu.Tx,
	}
	if cu.Ca != nil {
		u.CreatedAt = *cu.Ca
	}
	return u
}

func expandFAQs(in []CompactFAQ) []businessModel.FAQ {
	if len(in) == 0 {
		return nil
	}
	out := make([]businessModel.FAQ, len(in))
	for i, f := range in {
		out[i] = businessModel.FAQ{Question: f.Q, Answer: f.A}
	}
	return out
}

// ========================================
// BYTES
// ========================================

// Marshal compresses pd and encodes it as JSON.
func Marshal(pd model.PageData) ([]byte, error) {
	return json.Marshal(Compress(pd))
}

// Unmarshal decodes a stored blob and expands it.
func Unmarshal(data []byte) (model.PageData, error) {
	var c Compact
	if err := json.Unmarshal(data, &c); err != nil {
		return model.PageData{}, model.NewInvalidPageData(err)
	}
	return Expand(c), nil
}

// ========================================
// HELPERS
// ========================================

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func copyTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := *t
	return &v
}

// nonEmpty drops blank entries and returns nil for an empty result.
func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func isEmptyBusiness(cb *CompactBusiness) bool {
	return cb.ID == "" && cb.N == "" && cb.Sl == "" && cb.C == "" &&
		cb.A == "" && cb.Ci == "" && cb.R == "" && cb.Z == "" && cb.Co == "" &&
		cb.P == "" && cb.E == "" && cb.W == "" && cb.D == "" && cb.H == "" &&
		cb.Pr == "" && cb.Sa == "" && cb.So == "" && cb.Tz == "" && cb.Fy == 0 &&
		len(cb.S) == 0 && len(cb.Sp) == 0 && len(cb.Wh) == 0 && len(cb.Pm) == 0 &&
		len(cb.L) == 0 && len(cb.Ac) == 0 && len(cb.Aw) == 0 && len(cb.Ce) == 0 &&
		len(cb.Sm) == 0 && len(cb.Fq) == 0 && cb.Lat == nil && cb.Rv == nil
}
