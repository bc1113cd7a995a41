package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
)

const (
	maxVoiceWords = 49
	maxFAQEntries = 8
)

// Voice topics, in FAQ priority order.
const (
	TopicHours    = "hours"
	TopicLocation = "location"
	TopicContact  = "contact"
	TopicServices = "services"
	TopicGeneral  = "general"
)

// VoiceAnswer is a short spoken-style answer.
type VoiceAnswer struct {
	Topic string
	Text  string
}

// FAQEntry is a rendered FAQ item. Topic and Triggers are set for generated
// voice entries only.
type FAQEntry struct {
	Question string
	Answer   string
	Topic    string
	Triggers []string
}

// VoiceTriggers joins the trigger phrases for the data-voice attribute.
func (f FAQEntry) VoiceTriggers() string {
	return strings.Join(f.Triggers, "; ")
}

// VoiceAnswers builds every answer the record supports, each under 50 words.
// Empty answers are left out.
func VoiceAnswers(b *businessModel.Business, now time.Time) []VoiceAnswer {
	candidates := []VoiceAnswer{
		{TopicHours, hoursAnswer(b, now)},
		{TopicLocation, locationAnswer(b)},
		{TopicContact, contactAnswer(b)},
		{TopicServices, servicesAnswer(b)},
		{TopicGeneral, generalAnswer(b)},
	}

	out := make([]VoiceAnswer, 0, len(candidates))
	for _, a := range candidates {
		if a.Text != "" {
			a.Text = capWords(a.Text, maxVoiceWords)
			out = append(out, a)
		}
	}
	return out
}

// LocalTime moves now into the business's time zone, or into fallback when
// the record has no valid zone.
func LocalTime(b *businessModel.Business, now time.Time, fallback *time.Location) time.Time {
	if b.TimeZone != "" {
		if loc, err := time.LoadLocation(b.TimeZone); err == nil {
			return now.In(loc)
		}
	}
	if fallback != nil {
		return now.In(fallback)
	}
	return now
}

func hoursAnswer(b *businessModel.Business, now time.Time) string {
	switch b.StatusOverride {
	case businessModel.StatusEmergencyClosed:
		return fmt.Sprintf("%s is closed today due to an emergency. Please check back for updates.", b.Name)
	case businessModel.StatusHolidayClosed:
		return fmt.Sprintf("%s is closed today for the holiday.", b.Name)
	case businessModel.StatusTemporarilyClosed:
		return fmt.Sprintf("%s is temporarily closed.", b.Name)
	}

	if day, ok := today(b.WeeklyHours, now); ok {
		open, okOpen := parseClock(day.Open)
		closing, okClose := parseClock(day.Close)
		if !day.Closed && okOpen && okClose {
			cur := now.Hour()*60 + now.Minute()
			end := closing
			if end <= open {
				end += 24 * 60
			}
			if cur >= open && cur < end {
				return fmt.Sprintf("%s is open now until %s.", b.Name, formatClock(closing))
			}
		}
		return fmt.Sprintf("%s is closed now.", b.Name)
	}

	if b.Hours != "" {
		return fmt.Sprintf("%s's hours are %s.", b.Name, strings.TrimSuffix(b.Hours, "."))
	}
	return ""
}

func locationAnswer(b *businessModel.Business) string {
	place := joinNonEmpty(", ", b.Address.Street, b.Address.City, strings.TrimSpace(b.Address.Region+" "+b.Address.PostalCode))
	if place == "" {
		return ""
	}
	answer := fmt.Sprintf("%s is located at %s.", b.Name, place)
	if b.ServiceArea != "" {
		answer += fmt.Sprintf(" They serve %s.", strings.TrimSuffix(b.ServiceArea, "."))
	}
	return answer
}

func contactAnswer(b *businessModel.Business) string {
	var ways []string
	if b.Phone != "" {
		ways = append(ways, "by phone at "+b.Phone)
	}
	if b.Email != "" {
		ways = append(ways, "by email at "+b.Email)
	}
	if b.Website != "" {
		ways = append(ways, "online at "+b.Website)
	}
	if len(ways) == 0 {
		return ""
	}
	return fmt.Sprintf("You can reach %s %s.", b.Name, joinWithOr(ways))
}

func servicesAnswer(b *businessModel.Business) string {
	services := b.Services
	if len(services) == 0 {
		return ""
	}
	if len(services) > 3 {
		services = services[:3]
	}
	return fmt.Sprintf("%s offers %s.", b.Name, joinWithAnd(services))
}

func generalAnswer(b *businessModel.Business) string {
	if b.Name == "" {
		return ""
	}
	cat := businessModel.LookupCategory(b.Category)
	answer := fmt.Sprintf("%s is %s %s", b.Name, article(cat.Name), strings.ToLower(cat.Name))
	if place := b.CityRegion(); place != "" {
		answer += " in " + place
	}
	answer += "."
	if b.FoundedYear > 0 {
		answer += fmt.Sprintf(" It has served customers since %d.", b.FoundedYear)
	}
	return answer
}

// ========================================
// FAQ MERGE
// ========================================

// voiceTriggers are the spoken queries each generated entry answers.
var voiceTriggers = map[string][]string{
	TopicHours:    {"what time does %s open", "is %s open now", "when does %s close"},
	TopicLocation: {"where is %s", "directions to %s", "how do I get to %s"},
	TopicContact:  {"call %s", "what is the phone number for %s", "how do I reach %s"},
	TopicServices: {"what does %s offer", "does %s have what I need", "%s services"},
}

var voiceQuestions = map[string]string{
	TopicHours:    "What are %s's hours?",
	TopicLocation: "Where is %s located?",
	TopicContact:  "How do I contact %s?",
	TopicServices: "What services does %s offer?",
}

// MergeFAQs combines business, update and page FAQs. When at least one
// exists, generated voice entries are placed first (hours, location,
// contact, services) and the list is capped at 8.
func MergeFAQs(pd model.PageData, answers []VoiceAnswer) []FAQEntry {
	seen := make(map[string]bool)
	var custom []FAQEntry
	addCustom := func(faqs []businessModel.FAQ) {
		for _, f := range faqs {
			key := normalizeQuestion(f.Question)
			if key == "" || strings.TrimSpace(f.Answer) == "" || seen[key] {
				continue
			}
			seen[key] = true
			custom = append(custom, FAQEntry{Question: f.Question, Answer: f.Answer})
		}
	}
	addCustom(pd.Business.FAQs)
	if pd.Update != nil {
		addCustom(pd.Update.FAQs)
	}
	addCustom(pd.FAQs)

	if len(custom) == 0 {
		return nil
	}

	out := make([]FAQEntry, 0, maxFAQEntries)
	for _, a := range answers {
		pattern, ok := voiceQuestions[a.Topic]
		if !ok {
			continue
		}
		q := fmt.Sprintf(pattern, pd.Business.Name)
		if seen[normalizeQuestion(q)] {
			continue
		}
		out = append(out, FAQEntry{
			Question: q,
			Answer:   a.Text,
			Topic:    a.Topic,
			Triggers: triggerPhrases(a.Topic, pd.Business.Name),
		})
	}
	out = append(out, custom...)

	if len(out) > maxFAQEntries {
		out = out[:maxFAQEntries]
	}
	return out
}

func triggerPhrases(topic, name string) []string {
	patterns := voiceTriggers[topic]
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = fmt.Sprintf(p, name)
	}
	return out
}

// ========================================
// HELPERS
// ========================================

func today(week []businessModel.DayHours, now time.Time) (businessModel.DayHours, bool) {
	name := now.Weekday().String()
	for _, d := range week {
		if strings.EqualFold(d.Day, name) {
			return d, true
		}
	}
	return businessModel.DayHours{}, false
}

// parseClock reads "HH:MM" into minutes after midnight.
func parseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh < 0 || hh > 24 || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}

func formatClock(minutes int) string {
	minutes %= 24 * 60
	h, m := minutes/60, minutes%60
	switch {
	case h == 0 && m == 0:
		return "midnight"
	case h == 12 && m == 0:
		return "noon"
	}
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	if m == 0 {
		return fmt.Sprintf("%d %s", h, suffix)
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

func capWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	out := strings.TrimRight(strings.Join(words[:limit], " "), ",;:")
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}

func normalizeQuestion(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimRight(q, "?")), " "))
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func joinWithAnd(items []string) string {
	return joinList(items, "and")
}

func joinWithOr(items []string) string {
	return joinList(items, "or")
}

func joinList(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + conj + " " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", " + conj + " " + items[len(items)-1]
}

func article(word string) string {
	if word != "" && strings.ContainsRune("AEIOUaeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}
