package normalize

import (
	"strings"
	"time"
	"unicode"

	"github.com/medcanon/platform/pkg/patterns"
)

// Normalizer applies the field-level cleaning rules. Every method is total:
// any input, including nil, resolves to a canonical value, a fixed fallback,
// or an explicit absence. Nothing here returns an error or panics.
type Normalizer struct {
	lib *patterns.Library
}

func New(lib *patterns.Library) *Normalizer {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Normalizer{lib: lib}
}

const (
	Unknown       = "Unknown"
	patientIDLen  = 4
	patientPrefix = "P-"
)

// PatientID strips everything that is not a decimal digit, keeps the
// rightmost four digits and left-pads with zeros to width four. An input with
// no digits at all still yields "P-0000"; identifier validity is a quality
// audit concern, not a per-record rejection.
func (n *Normalizer) PatientID(raw *string) string {
	digits := digitsOnly(deref(raw))
	if len(digits) > patientIDLen {
		digits = digits[len(digits)-patientIDLen:]
	}
	for len(digits) < patientIDLen {
		digits = "0" + digits
	}
	return patientPrefix + digits
}

// Name trims and title-cases whitespace-separated tokens. Empty or absent
// input falls back to "Unknown".
func (n *Normalizer) Name(raw *string) string {
	fields := strings.Fields(deref(raw))
	if len(fields) == 0 {
		return Unknown
	}
	for i, f := range fields {
		fields[i] = titleToken(f)
	}
	return strings.Join(fields, " ")
}

func (n *Normalizer) Gender(raw *string) string {
	return lookupSynonym(n.lib.GenderSynonyms, raw)
}

func (n *Normalizer) VitalType(raw *string) string {
	return lookupSynonym(n.lib.VitalTypeSynonyms, raw)
}

func (n *Normalizer) LabTest(raw *string) string {
	return lookupSynonym(n.lib.LabTestSynonyms, raw)
}

// BirthDate tries the ordered birth-date candidates first-match-wins: the
// shape regex gates, then the paired layout parses. A string whose shape
// matches but denotes an impossible calendar date fails closed to absent.
func (n *Normalizer) BirthDate(raw *string) *time.Time {
	return parseCandidates(n.lib.BirthDateFormats, raw)
}

// Timestamp parses admission/discharge times against the ordered timestamp
// candidates, with the same fail-closed contract as BirthDate.
func (n *Normalizer) Timestamp(raw *string) *time.Time {
	return parseCandidates(n.lib.TimestampFormats, raw)
}

// Phone strips non-digits and classifies against the phone shapes in order.
// A match rewrites the number to E.164; no match reports (absent, invalid).
// This is the only field with an explicit validity flag, because consumers
// need to tell "missing" apart from "malformed".
func (n *Normalizer) Phone(raw *string) (*string, bool) {
	digits := digitsOnly(deref(raw))
	for i := range n.lib.PhoneShapes {
		shape := &n.lib.PhoneShapes[i]
		if shape.Match(digits) {
			normalized := shape.Apply(digits)
			return &normalized, false
		}
	}
	return nil, true
}

// FreeText trims only; vital values and lab results stay unvalidated text.
func (n *Normalizer) FreeText(raw *string) *string {
	trimmed := strings.TrimSpace(deref(raw))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseCandidates(candidates []patterns.DateFormat, raw *string) *time.Time {
	trimmed := strings.TrimSpace(deref(raw))
	if trimmed == "" {
		return nil
	}
	for i := range candidates {
		candidate := &candidates[i]
		if !candidate.Match(trimmed) {
			continue
		}
		parsed, err := time.Parse(candidate.Layout, trimmed)
		if err != nil {
			// Shape matched but the calendar value is impossible.
			return nil
		}
		return &parsed
	}
	return nil
}

func lookupSynonym(table map[string]string, raw *string) string {
	key := strings.ToLower(strings.TrimSpace(deref(raw)))
	if canonical, ok := table[key]; ok {
		return canonical
	}
	return Unknown
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func titleToken(token string) string {
	runes := []rune(strings.ToLower(token))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
