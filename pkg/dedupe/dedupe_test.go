package dedupe

import (
	"testing"
	"time"

	"github.com/medcanon/platform/pkg/common/models"
)

func ts(value string) *time.Time {
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func TestEarliestAdmissionWins(t *testing.T) {
	records := []models.CleanRecord{
		{PatientID: "P-0001", FullName: "Later", AdmissionTime: ts("2021-01-02 09:00")},
		{PatientID: "P-0001", FullName: "Earlier", AdmissionTime: ts("2021-01-01 09:00")},
	}

	ds := Deduplicate(records)
	if ds.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", ds.Len())
	}
	rec, ok := ds.Get("P-0001")
	if !ok || rec.FullName != "Earlier" {
		t.Fatalf("kept %q, want the earlier admission", rec.FullName)
	}
}

func TestPresentAdmissionBeatsAbsent(t *testing.T) {
	withTime := models.CleanRecord{PatientID: "P-0002", FullName: "Timed", AdmissionTime: ts("2021-06-01 12:00")}
	withoutTime := models.CleanRecord{PatientID: "P-0002", FullName: "Untimed"}

	// Regardless of input order the timed record survives.
	for _, records := range [][]models.CleanRecord{
		{withTime, withoutTime},
		{withoutTime, withTime},
	} {
		ds := Deduplicate(records)
		rec, ok := ds.Get("P-0002")
		if !ok || rec.FullName != "Timed" {
			t.Fatalf("kept %q, want the record with an admission time", rec.FullName)
		}
	}
}

func TestTiesKeepFirstSeen(t *testing.T) {
	records := []models.CleanRecord{
		{PatientID: "P-0003", FullName: "First", AdmissionTime: ts("2021-03-01 08:00")},
		{PatientID: "P-0003", FullName: "Second", AdmissionTime: ts("2021-03-01 08:00")},
	}
	ds := Deduplicate(records)
	rec, _ := ds.Get("P-0003")
	if rec.FullName != "First" {
		t.Fatalf("tie kept %q, want first-seen", rec.FullName)
	}

	// All-absent groups also resolve first-seen.
	records = []models.CleanRecord{
		{PatientID: "P-0004", FullName: "First"},
		{PatientID: "P-0004", FullName: "Second"},
	}
	rec, _ = Deduplicate(records).Get("P-0004")
	if rec.FullName != "First" {
		t.Fatalf("absent-time tie kept %q, want first-seen", rec.FullName)
	}
}

func TestOutputOrderAndUniqueness(t *testing.T) {
	records := []models.CleanRecord{
		{PatientID: "P-0010"},
		{PatientID: "P-0020"},
		{PatientID: "P-0010", AdmissionTime: ts("2020-01-01 00:00")},
		{PatientID: "P-0030"},
	}

	ds := Deduplicate(records)
	if ds.Len() != 3 {
		t.Fatalf("expected 3 unique patients, got %d", ds.Len())
	}

	wantOrder := []string{"P-0010", "P-0020", "P-0030"}
	seen := make(map[string]struct{})
	for i, rec := range ds.Records {
		if rec.PatientID != wantOrder[i] {
			t.Fatalf("record %d is %s, want %s", i, rec.PatientID, wantOrder[i])
		}
		if _, dup := seen[rec.PatientID]; dup {
			t.Fatalf("duplicate patient id %s in output", rec.PatientID)
		}
		seen[rec.PatientID] = struct{}{}
	}

	// The later record with an admission time replaced the first-seen one in place.
	rec, _ := ds.Get("P-0010")
	if rec.AdmissionTime == nil {
		t.Fatal("expected the timed record to be retained for P-0010")
	}
}

func TestEmptyBatch(t *testing.T) {
	ds := Deduplicate(nil)
	if ds.Len() != 0 {
		t.Fatalf("expected empty dataset, got %d records", ds.Len())
	}
}
