package normalize

import (
	"testing"
	"time"
)

func strPtr(s string) *string {
	return &s
}

func TestPatientIDAlwaysCanonical(t *testing.T) {
	n := New(nil)

	cases := []struct {
		in   *string
		want string
	}{
		{strPtr("123"), "P-0123"},
		{strPtr("  PT-42 "), "P-0042"},
		{strPtr("id:987654"), "P-7654"}, // longer than four digits keeps the rightmost four
		{strPtr("no digits here"), "P-0000"},
		{strPtr(""), "P-0000"},
		{nil, "P-0000"},
		{strPtr("P-0042"), "P-0042"}, // already canonical, unchanged
	}
	for _, tc := range cases {
		got := n.PatientID(tc.in)
		if got != tc.want {
			t.Fatalf("PatientID(%v) = %q, want %q", tc.in, got, tc.want)
		}
		if len(got) != 6 || got[:2] != "P-" {
			t.Fatalf("PatientID(%v) = %q does not match P-#### form", tc.in, got)
		}
	}
}

func TestNameTitleCasesAndFallsBack(t *testing.T) {
	n := New(nil)

	cases := []struct {
		in   *string
		want string
	}{
		{strPtr("  john   DOE "), "John Doe"},
		{strPtr("mary-ann smith"), "Mary-ann Smith"},
		{strPtr("   "), "Unknown"},
		{strPtr(""), "Unknown"},
		{nil, "Unknown"},
	}
	for _, tc := range cases {
		if got := n.Name(tc.in); got != tc.want {
			t.Fatalf("Name(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGenderSynonymsCaseInsensitive(t *testing.T) {
	n := New(nil)

	for _, in := range []string{"m", "male", "MALE", " Male "} {
		if got := n.Gender(strPtr(in)); got != "M" {
			t.Fatalf("Gender(%q) = %q, want M", in, got)
		}
	}
	for _, in := range []string{"f", "Female", "F"} {
		if got := n.Gender(strPtr(in)); got != "F" {
			t.Fatalf("Gender(%q) = %q, want F", in, got)
		}
	}
	for _, in := range []*string{strPtr("x"), strPtr(""), nil} {
		if got := n.Gender(in); got != "Unknown" {
			t.Fatalf("Gender(%v) = %q, want Unknown", in, got)
		}
	}
}

func TestCategoricalIdempotence(t *testing.T) {
	n := New(nil)

	// Canonical outputs re-normalize to themselves.
	if got := n.Gender(strPtr("M")); got != "M" {
		t.Fatalf("re-normalizing M gave %q", got)
	}
	if got := n.Gender(strPtr("Unknown")); got != "Unknown" {
		t.Fatalf("re-normalizing Unknown gave %q", got)
	}
	if got := n.LabTest(strPtr("Hgb")); got != "Hgb" {
		t.Fatalf("re-normalizing Hgb gave %q", got)
	}
	if got := n.PatientID(strPtr("P-0123")); got != "P-0123" {
		t.Fatalf("re-normalizing P-0123 gave %q", got)
	}
}

func TestVitalTypeAndLabTestTables(t *testing.T) {
	n := New(nil)

	vitals := map[string]string{
		"temp":        "Temperature",
		"Temperature": "Temperature",
		"HR":          "Heart Rate",
		"heart rate":  "Heart Rate",
		"bp":          "Blood Pressure",
		"pulse":       "Unknown",
	}
	for in, want := range vitals {
		if got := n.VitalType(strPtr(in)); got != want {
			t.Fatalf("VitalType(%q) = %q, want %q", in, got, want)
		}
	}

	labs := map[string]string{
		"wbc":        "WBC",
		"Hb":         "Hgb",
		"HGB":        "Hgb",
		"creatinine": "Creatinine",
		"glucose":    "Unknown",
	}
	for in, want := range labs {
		if got := n.LabTest(strPtr(in)); got != want {
			t.Fatalf("LabTest(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBirthDateFormatConventions(t *testing.T) {
	n := New(nil)

	iso := n.BirthDate(strPtr("1990-05-01"))
	if iso == nil || !iso.Equal(time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ISO date parsed as %v", iso)
	}

	// Slash form is day-first: 01/05/1990 is the 1st of May.
	slash := n.BirthDate(strPtr("01/05/1990"))
	if slash == nil || slash.Day() != 1 || slash.Month() != time.May || slash.Year() != 1990 {
		t.Fatalf("slash date parsed as %v, want day-first 1 May 1990", slash)
	}

	// Hyphen form is month-first: 01-05-1990 is the 5th of January.
	hyphen := n.BirthDate(strPtr("01-05-1990"))
	if hyphen == nil || hyphen.Day() != 5 || hyphen.Month() != time.January || hyphen.Year() != 1990 {
		t.Fatalf("hyphen date parsed as %v, want month-first 5 Jan 1990", hyphen)
	}
}

func TestBirthDateFailsClosed(t *testing.T) {
	n := New(nil)

	cases := []*string{
		strPtr("not a date"),
		strPtr("1990/05/01"), // mixed separators match no shape
		strPtr("32/01/1990"), // shape matches, impossible day
		strPtr("1990-13-01"), // shape matches, impossible month
		strPtr(""),
		nil,
	}
	for _, in := range cases {
		if got := n.BirthDate(in); got != nil {
			t.Fatalf("BirthDate(%v) = %v, want absent", in, got)
		}
	}
}

func TestTimestampFormats(t *testing.T) {
	n := New(nil)

	iso := n.Timestamp(strPtr("2021-01-02 14:30"))
	if iso == nil || !iso.Equal(time.Date(2021, 1, 2, 14, 30, 0, 0, time.UTC)) {
		t.Fatalf("ISO timestamp parsed as %v", iso)
	}

	slash := n.Timestamp(strPtr("02/01/2021 14:30"))
	if slash == nil || slash.Day() != 2 || slash.Month() != time.January {
		t.Fatalf("slash timestamp parsed as %v, want day-first 2 Jan", slash)
	}

	if got := n.Timestamp(strPtr("2021-01-02")); got != nil {
		t.Fatalf("date-only input parsed as timestamp %v, want absent", got)
	}
}

func TestPhoneShapes(t *testing.T) {
	n := New(nil)

	cases := []struct {
		in      string
		want    string
		invalid bool
	}{
		{"0971234567", "+260971234567", false},
		{"260971234567", "+260971234567", false},
		{"971234567", "+260971234567", false},
		{"097-123-4567", "+260971234567", false}, // punctuation stripped first
		{"12345", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, invalid := n.Phone(strPtr(tc.in))
		if invalid != tc.invalid {
			t.Fatalf("Phone(%q) invalid = %v, want %v", tc.in, invalid, tc.invalid)
		}
		if tc.invalid {
			if got != nil {
				t.Fatalf("Phone(%q) = %q, want absent", tc.in, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Fatalf("Phone(%q) = %v, want %q", tc.in, got, tc.want)
		}
	}

	if got, invalid := n.Phone(nil); got != nil || !invalid {
		t.Fatalf("Phone(nil) = (%v, %v), want (absent, true)", got, invalid)
	}
}

func TestFreeTextTrimsOnly(t *testing.T) {
	n := New(nil)

	if got := n.FreeText(strPtr("  120/80 mmHg ")); got == nil || *got != "120/80 mmHg" {
		t.Fatalf("FreeText trim gave %v", got)
	}
	if got := n.FreeText(strPtr("   ")); got != nil {
		t.Fatalf("blank free text gave %v, want absent", got)
	}
	if got := n.FreeText(nil); got != nil {
		t.Fatalf("nil free text gave %v, want absent", got)
	}
}
