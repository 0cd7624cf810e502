package patterns

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DateFormat pairs a structural shape regex with the Go layout used to parse
// strings of that shape. Shape check always precedes the parse, so the layout
// only ever sees inputs it structurally agrees with.
type DateFormat struct {
	Name   string `yaml:"name" json:"name"`
	Shape  string `yaml:"shape" json:"shape"`
	Layout string `yaml:"layout" json:"layout"`

	re *regexp.Regexp
}

func (f *DateFormat) Match(s string) bool {
	return f.re != nil && f.re.MatchString(s)
}

// PhoneShape classifies an all-digit string and rewrites it to E.164 form:
// Drop leading digits are cut, Prefix is prepended to the remainder.
type PhoneShape struct {
	Name   string `yaml:"name" json:"name"`
	Shape  string `yaml:"shape" json:"shape"`
	Drop   int    `yaml:"drop" json:"drop"`
	Prefix string `yaml:"prefix" json:"prefix"`

	re *regexp.Regexp
}

func (p *PhoneShape) Match(digits string) bool {
	return p.re != nil && p.re.MatchString(digits)
}

func (p *PhoneShape) Apply(digits string) string {
	if p.Drop > 0 && p.Drop <= len(digits) {
		digits = digits[p.Drop:]
	}
	return p.Prefix + digits
}

// Library holds every format pattern and synonym table the field normalizers
// consult. It is pure data: constructed once at process start, immutable for
// the run, and safe to share across concurrent normalizer calls.
type Library struct {
	BirthDateFormats  []DateFormat      `yaml:"birth_date_formats" json:"birth_date_formats"`
	TimestampFormats  []DateFormat      `yaml:"timestamp_formats" json:"timestamp_formats"`
	PhoneShapes       []PhoneShape      `yaml:"phone_shapes" json:"phone_shapes"`
	GenderSynonyms    map[string]string `yaml:"gender_synonyms" json:"gender_synonyms"`
	VitalTypeSynonyms map[string]string `yaml:"vital_type_synonyms" json:"vital_type_synonyms"`
	LabTestSynonyms   map[string]string `yaml:"lab_test_synonyms" json:"lab_test_synonyms"`
}

func Load(path string) (*Library, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return Default(), err
	}

	var lib Library
	if err := yaml.Unmarshal(content, &lib); err != nil {
		return nil, err
	}
	if err := lib.compile(); err != nil {
		return nil, err
	}
	return &lib, nil
}

func (l *Library) compile() error {
	if len(l.BirthDateFormats) == 0 || len(l.TimestampFormats) == 0 {
		return errors.New("pattern library has no date formats")
	}
	if len(l.PhoneShapes) == 0 {
		return errors.New("pattern library has no phone shapes")
	}
	if len(l.GenderSynonyms) == 0 || len(l.VitalTypeSynonyms) == 0 || len(l.LabTestSynonyms) == 0 {
		return errors.New("pattern library has empty synonym tables")
	}

	for i := range l.BirthDateFormats {
		re, err := regexp.Compile(l.BirthDateFormats[i].Shape)
		if err != nil {
			return fmt.Errorf("birth date format %q: %w", l.BirthDateFormats[i].Name, err)
		}
		l.BirthDateFormats[i].re = re
	}
	for i := range l.TimestampFormats {
		re, err := regexp.Compile(l.TimestampFormats[i].Shape)
		if err != nil {
			return fmt.Errorf("timestamp format %q: %w", l.TimestampFormats[i].Name, err)
		}
		l.TimestampFormats[i].re = re
	}
	for i := range l.PhoneShapes {
		re, err := regexp.Compile(l.PhoneShapes[i].Shape)
		if err != nil {
			return fmt.Errorf("phone shape %q: %w", l.PhoneShapes[i].Name, err)
		}
		l.PhoneShapes[i].re = re
	}
	return nil
}

// Default returns the built-in rule set. Candidate order is significant:
// formats are tried first-match-wins, and the slash date form is day-first
// while the hyphen form is month-first. The two conventions are distinct in
// the upstream sources and must stay distinct here.
func Default() *Library {
	lib := &Library{
		BirthDateFormats: []DateFormat{
			{Name: "iso", Shape: `^\d{4}-\d{2}-\d{2}$`, Layout: "2006-01-02"},
			{Name: "slash-day-first", Shape: `^\d{2}/\d{2}/\d{4}$`, Layout: "02/01/2006"},
			{Name: "hyphen-month-first", Shape: `^\d{2}-\d{2}-\d{4}$`, Layout: "01-02-2006"},
		},
		TimestampFormats: []DateFormat{
			{Name: "iso-minute", Shape: `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, Layout: "2006-01-02 15:04"},
			{Name: "slash-day-first-minute", Shape: `^\d{2}/\d{2}/\d{4} \d{2}:\d{2}$`, Layout: "02/01/2006 15:04"},
		},
		PhoneShapes: []PhoneShape{
			{Name: "local-leading-zero", Shape: `^0\d{9}$`, Drop: 1, Prefix: "+260"},
			{Name: "country-code-bare", Shape: `^260\d{9}$`, Drop: 0, Prefix: "+"},
			{Name: "subscriber-only", Shape: `^\d{9}$`, Drop: 0, Prefix: "+260"},
		},
		GenderSynonyms: map[string]string{
			"m":      "M",
			"male":   "M",
			"f":      "F",
			"female": "F",
		},
		VitalTypeSynonyms: map[string]string{
			"temperature": "Temperature",
			"temp":        "Temperature",
			"hr":          "Heart Rate",
			"heart rate":  "Heart Rate",
			"bp":          "Blood Pressure",
		},
		LabTestSynonyms: map[string]string{
			"wbc":        "WBC",
			"hb":         "Hgb",
			"hgb":        "Hgb",
			"creatinine": "Creatinine",
		},
	}
	if err := lib.compile(); err != nil {
		// Built-in shapes are compile-time constants; this cannot fire.
		panic(err)
	}
	return lib
}
