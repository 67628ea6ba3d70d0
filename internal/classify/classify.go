// Package classify assigns priority tiers and issue types to free-text
// complaint descriptions. Everything here is a pure function over fixed
// keyword tables: no store access, no locale handling, case-insensitive
// substring matching with the most severe rule winning.
//
// Two priority rules exist on purpose and must not be merged:
//
//   - ConcernPriority is the generic four-tier rule used for agent-queue
//     escalations and anything without a channel-specific default.
//   - OutagePriority is the outage-intake rule: a structured incident type
//     from the fixed critical set forces CRITICAL, otherwise any critical
//     keyword does, otherwise the result is HIGH. Outage reports never
//     classify below HIGH.
package classify

import "strings"

// criticalKeywords are life-threatening or hazardous terms. The list is the
// union of all intake channels' critical vocabularies, including the
// Hiligaynon terms the SMS channel sees.
var criticalKeywords = []string{
	"fire", "explosion", "burning", "smoke", "accident",
	"fallen wire", "electric shock", "live wire", "transformer burst",
	"emergency", "danger", "hazard", "sparking", "exposed wire",
	"electrocuted", "injured", "death", "pole down", "wire down",
	"short circuit", "arcing", "flames", "sunog", "delikado",
}

var highKeywords = []string{
	"no electricity", "power outage", "blackout", "brownout",
	"no power", "walang kuryente",
}

var mediumKeywords = []string{
	"billing", "bill", "payment", "follow-up", "follow up",
}

var lowKeywords = []string{
	"transfer", "new connection", "installation", "application",
}

// criticalIncidentTypes is the structured incident-type codes that force
// CRITICAL regardless of the free text.
var criticalIncidentTypes = map[string]bool{
	"fallen_wire":       true,
	"fire_hazard":       true,
	"transformer_issue": true,
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// ConcernPriority classifies free text into the four-tier scale. Rules are
// checked most severe first; ambiguous text falls through to LOW.
func ConcernPriority(concern string) string {
	text := strings.ToLower(concern)
	switch {
	case containsAny(text, criticalKeywords):
		return "CRITICAL"
	case containsAny(text, highKeywords):
		return "HIGH"
	case containsAny(text, mediumKeywords):
		return "MEDIUM"
	case containsAny(text, lowKeywords):
		return "LOW"
	default:
		return "LOW"
	}
}

// OutagePriority classifies an outage report. incidentType, when present
// and in the fixed critical set, overrides the free text unconditionally.
// Everything non-critical is HIGH: an outage is never routine.
func OutagePriority(details, incidentType string) string {
	if criticalIncidentTypes[incidentType] {
		return "CRITICAL"
	}
	if containsAny(strings.ToLower(details), criticalKeywords) {
		return "CRITICAL"
	}
	return "HIGH"
}

// DetectIssueType routes free-form text (the simple SMS format) onto one of
// the three issue types. Unrecognized content lands in Service, where a
// human agent picks it up.
func DetectIssueType(content string) string {
	text := strings.ToLower(content)
	switch {
	case containsAny(text, []string{"outage", "blackout", "no power", "brownout", "walang kuryente"}):
		return "POWER OUTAGE"
	case containsAny(text, []string{"bill", "billing", "bayad", "presyo"}):
		return "BILLING"
	default:
		return "SERVICE"
	}
}
