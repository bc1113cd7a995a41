package synth

import (
	"fmt"
	"strings"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
)

// Field length bounds requested from the model.
const (
	TitleMin       = 50
	TitleMax       = 150
	DescriptionMin = 150
	DescriptionMax = 300
	SlugMin        = 30
	SlugMax        = 80
)

var intentAngles = [model.IntentCount]string{
	0: "Direct brand search. Lead with the business name and the news in this update.",
	1: "Local proximity search (\"near me\"). Lead with the category and the city the business serves.",
	2: "Category or service search. Frame the business professionally within its category and highlight listed services.",
	3: "Brand plus location search. Combine the business name with its city.",
	4: "Urgent availability search. Stress that the business can help right now and how to reach it.",
	5: "Comparison search. Emphasize verifiable strengths only: reviews, awards, certifications, specialties.",
}

// BuildPrompt assembles the instruction sent to the completion provider.
// Only populated record fields are included.
func BuildPrompt(b *businessModel.Business, u *businessModel.Update, intent model.Intent) string {
	var sb strings.Builder

	sb.WriteString("You write search metadata for a local business web page.\n\n")
	if idx := intent.Index(); idx >= 0 {
		fmt.Fprintf(&sb, "Page intent: %s. %s\n\n", intent, intentAngles[idx])
	}

	sb.WriteString("Business facts:\n")
	for _, f := range businessFacts(b) {
		fmt.Fprintf(&sb, "- %s: %s\n", f[0], f[1])
	}

	if u != nil {
		sb.WriteString("\nUpdate:\n")
		fmt.Fprintf(&sb, "- text: %s\n", strings.TrimSpace(u.Content))
		if u.SpecialHours != "" {
			fmt.Fprintf(&sb, "- special hours today: %s\n", u.SpecialHours)
		}
		if u.DealTerms != "" {
			fmt.Fprintf(&sb, "- deal terms: %s\n", u.DealTerms)
		}
		if u.Category != "" {
			fmt.Fprintf(&sb, "- update category: %s\n", u.Category)
		}
	}

	sb.WriteString("\nRules:\n")
	sb.WriteString("- Use only the facts above. Do not invent rankings, awards, services, locations, prices or any claim not stated.\n")
	sb.WriteString("- Do not call the business \"best\" or \"#1\" unless a listed award says so.\n")
	fmt.Fprintf(&sb, "- title: %d to %d characters.\n", TitleMin, TitleMax)
	fmt.Fprintf(&sb, "- description: %d to %d characters, ending with a call to action.\n", DescriptionMin, DescriptionMax)
	fmt.Fprintf(&sb, "- slug: %d to %d characters, lowercase words joined by hyphens, no dates.\n", SlugMin, SlugMax)
	sb.WriteString("\nRespond with strict JSON only, no prose and no code fences:\n")
	sb.WriteString(`{"title": "...", "description": "...", "slug": "..."}`)
	sb.WriteString("\n")

	return sb.String()
}

func businessFacts(b *businessModel.Business) [][2]string {
	cat := businessModel.LookupCategory(b.Category)
	facts := [][2]string{{"name", b.Name}, {"category", cat.Name}}

	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			facts = append(facts, [2]string{label, v})
		}
	}
	addList := func(label string, values []string) {
		if len(values) > 0 {
			add(label, strings.Join(values, ", "))
		}
	}

	add("location", b.CityRegion())
	add("street", b.Address.Street)
	add("phone", b.Phone)
	add("website", b.Website)
	add("description", b.Description)
	addList("services", b.Services)
	addList("specialties", b.Specialties)
	add("hours", b.Hours)
	add("price range", b.PriceRange)
	add("service area", b.ServiceArea)
	addList("awards", b.Awards)
	addList("certifications", b.Certifications)
	if b.FoundedYear > 0 {
		add("founded", fmt.Sprintf("%d", b.FoundedYear))
	}
	if b.Reviews != nil && b.Reviews.Count > 0 {
		add("reviews", fmt.Sprintf("%s average from %d reviews", b.Reviews.Average.StringFixed(1), b.Reviews.Count))
	}
	return facts
}
