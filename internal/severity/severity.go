// Package severity normalizes free-text severity and urgency strings from
// hazard feeds onto a stable vocabulary.
package severity

import (
	"strings"

	"github.com/safesignal/safesignal/internal/models"
)

// Normalize maps a raw severity/urgency string to the stable set used by the
// scorer. Matching is case-insensitive substring containment, first hit wins:
// emergency > watch > advice > warning. Unrecognized values are returned
// verbatim so feeds with vocabularies outside the set still flow through;
// the scorer's downgrade rules substring-match whatever ends up stored.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return models.SeverityAdvice
	}

	t := strings.ToLower(raw)
	switch {
	case strings.Contains(t, "emergency"):
		return models.SeverityEmergencyWarning
	case strings.Contains(t, "watch"):
		return models.SeverityWatchAndAct
	case strings.Contains(t, "advice"):
		return models.SeverityAdvice
	case strings.Contains(t, "warning"):
		return models.SeverityWarning
	default:
		return raw
	}
}
