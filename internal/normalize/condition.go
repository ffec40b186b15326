package normalize

import "strings"

// Canonical condition vocabulary
const (
	ConditionNew     = "new"
	ConditionUsed    = "used"
	ConditionUnknown = "unknown"
)

// Condition maps free-text and schema.org condition tokens to the
// canonical vocabulary. Tokens outside the vocabulary pass through
// unchanged so the classifier still sees the original phrase.
func Condition(token string) string {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ConditionUnknown
	}

	switch strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(trimmed, "https://schema.org/"), "http://schema.org/")) {
	case "new", "newcondition", "nowe", "nowy", "nowa":
		return ConditionNew
	case "used", "usedcondition", "używane", "uzywane", "używany":
		return ConditionUsed
	default:
		return trimmed
	}
}
