package model

import "fmt"

// Intent is the discovery strategy a page is tuned for.
type Intent string

const (
	IntentDirect        Intent = "direct"
	IntentLocal         Intent = "local"
	IntentCategory      Intent = "category"
	IntentBrandedLocal  Intent = "branded-local"
	IntentServiceUrgent Intent = "service-urgent"
	IntentCompetitive   Intent = "competitive"
)

// AllIntents lists every intent in generation order.
var AllIntents = []Intent{
	IntentDirect,
	IntentLocal,
	IntentCategory,
	IntentBrandedLocal,
	IntentServiceUrgent,
	IntentCompetitive,
}

// IntentCount is the size of the intent enumeration.
const IntentCount = 6

// Index returns a dense 0..IntentCount-1 position, or -1 for unknown values.
func (i Intent) Index() int {
	switch i {
	case IntentDirect:
		return 0
	case IntentLocal:
		return 1
	case IntentCategory:
		return 2
	case IntentBrandedLocal:
		return 3
	case IntentServiceUrgent:
		return 4
	case IntentCompetitive:
		return 5
	}
	return -1
}

func (i Intent) Valid() bool {
	return i.Index() >= 0
}

// RoutesUnderBusiness reports whether the intent's URL nests under the
// business slug rather than the category.
func (i Intent) RoutesUnderBusiness() bool {
	return i == IntentDirect || i == IntentBrandedLocal
}

// ParseIntent converts a raw string into an Intent.
func ParseIntent(s string) (Intent, error) {
	i := Intent(s)
	if !i.Valid() {
		return "", fmt.Errorf("unknown intent %q", s)
	}
	return i, nil
}
