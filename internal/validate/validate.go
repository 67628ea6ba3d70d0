// Package validate implements the intake validation rules shared by every
// entry channel: full name, contact number, service-area address, consumer
// account number, meter concern vocabulary, and follow-up references.
//
// Each function returns the normalized value and an error whose message is
// safe to show to the submitter verbatim; the dialogue engine re-prompts
// with it on rejection. Rules are deliberately strict and fixed — the
// service area is a closed list of towns.
package validate

import (
	"errors"
	"regexp"
	"strings"
)

var (
	phoneRE    = regexp.MustCompile(`^09\d{9}$`)
	accountRE  = regexp.MustCompile(`^\d{6,12}$`)
	jobOrderRE = regexp.MustCompile(`^JO-\d{8}-\d{4}$`)
)

// allowedTowns is the service-area allow-list. Keys are the lowercase
// substrings matched against addresses; values are the canonical spellings
// used on job orders.
var allowedTowns = []struct{ match, canonical string }{
	{"tubungan", "Tubungan"},
	{"alimodian", "Alimodian"},
	{"cabatuan", "Cabatuan"},
	{"guimbal", "Guimbal"},
	{"igbaras", "Igbaras"},
	{"leganes", "Leganes"},
	{"leon", "Leon"},
	{"miag-ao", "Miag-ao"},
	{"miagao", "Miag-ao"},
	{"oton", "Oton"},
	{"pavia", "Pavia"},
	{"san joaquin", "San Joaquin"},
	{"san miguel", "San Miguel"},
	{"sta. barbara", "Sta. Barbara"},
	{"sta barbara", "Sta. Barbara"},
	{"tigbauan", "Tigbauan"},
}

var localityKeywords = []string{"brgy", "purok", "street", "blk", "city"}

// meterConcernKeywords is the fixed vocabulary of acceptable meter
// problems. The matched keyword, not the raw input, is what gets stored.
var meterConcernKeywords = []string{
	"no display", "faded reading", "burned", "not rotating", "stuck up",
	"broken", "tilting", "defective", "damaged", "malfunction",
}

// FullName accepts a name of at least two tokens where every token is
// alphabetic (dots allowed for initials, e.g. "Ma. Elena Cruz").
func FullName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", errors.New("please enter a valid full name (e.g., Juan Dela Cruz)")
	}
	for _, p := range parts {
		for _, r := range p {
			if !isAlpha(r) && r != '.' && r != '-' {
				return "", errors.New("please enter a valid full name (e.g., Juan Dela Cruz)")
			}
		}
	}
	return name, nil
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Phone accepts exactly an 11-digit local mobile number starting with 09.
// Partial or prefixed matches are rejected; "091234567890" is invalid.
func Phone(raw string) (string, error) {
	num := strings.TrimSpace(raw)
	if !phoneRE.MatchString(num) {
		return "", errors.New("contact number must be an 11-digit number starting with 09 (e.g., 09123456789)")
	}
	return num, nil
}

// Address accepts an address of at least 10 characters that names both a
// locality keyword (brgy/purok/street/blk/city) and an allow-listed
// service-area town. Matching is case-insensitive; the value stored is the
// trimmed original.
func Address(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	lower := strings.ToLower(addr)
	if len(lower) < 10 || !hasLocalityKeyword(lower) || town(lower) == "" {
		return "", errors.New("please provide a more detailed address with your barangay and town (e.g., Brgy. Bacan, Cabatuan, Iloilo)")
	}
	return addr, nil
}

func hasLocalityKeyword(lower string) bool {
	for _, kw := range localityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func town(lower string) string {
	for _, t := range allowedTowns {
		if strings.Contains(lower, t.match) {
			return t.canonical
		}
	}
	return ""
}

// AccountNo accepts a 6-12 digit consumer account number.
func AccountNo(raw string) (string, error) {
	acct := strings.TrimSpace(raw)
	if !accountRE.MatchString(acct) {
		return "", errors.New("invalid account number: please enter 6-12 digits")
	}
	return acct, nil
}

// MeterConcern matches the input against the fixed meter-problem
// vocabulary and returns the matched keyword.
func MeterConcern(raw string) (string, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	for _, kw := range meterConcernKeywords {
		if strings.Contains(text, kw) {
			return kw, nil
		}
	}
	return "", errors.New("that's not a recognized meter concern, please describe the problem with the meter itself")
}

// JobOrderRef accepts a chatbot follow-up reference of the form
// JO-YYYYMMDD-NNNN (upper-cased before matching).
func JobOrderRef(raw string) (string, error) {
	ref := strings.ToUpper(strings.TrimSpace(raw))
	if !jobOrderRE.MatchString(ref) {
		return "", errors.New("the job order number seems invalid, it should look like JO-YYYYMMDD-XXXX")
	}
	return ref, nil
}

// LocationParts extracts (barangay, town) from a free-text address. The
// barangay is the first comma-separated segment title-cased; the town is
// the canonical spelling of the first allow-listed match, or empty when
// the address names none.
func LocationParts(address string) (brgy, canonicalTown string) {
	lower := strings.ToLower(strings.TrimSpace(address))
	if lower == "" {
		return "", ""
	}
	canonicalTown = town(lower)
	if segs := strings.Split(lower, ","); len(segs) > 0 {
		brgy = titleCase(strings.TrimSpace(segs[0]))
	}
	return brgy, canonicalTown
}

// titleCase upper-cases the first letter of each space-separated word.
// Locality names here are ASCII, so no locale handling is needed.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
