package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/medcanon/platform/pkg/common/models"
	"github.com/medcanon/platform/pkg/normalize"
)

func strPtr(s string) *string {
	return &s
}

func TestRunNormalizesAndDeduplicates(t *testing.T) {
	runner := NewRunner(normalize.New(nil), 4)

	batch := []models.RawRecord{
		{
			PatientID:     strPtr("1"),
			Gender:        strPtr("male"),
			AdmissionTime: strPtr("2021-01-02 10:00"),
		},
		{
			PatientID:     strPtr("0001"), // same patient after normalization
			Gender:        strPtr("M"),
			AdmissionTime: strPtr("2021-01-01 10:00"),
		},
		{
			PatientID: strPtr("2"),
			Phone:     strPtr("12345"),
		},
	}

	result := runner.Run(context.Background(), batch)

	if result.Dataset.Len() != 2 {
		t.Fatalf("expected 2 unique patients, got %d", result.Dataset.Len())
	}
	rec, ok := result.Dataset.Get("P-0001")
	if !ok {
		t.Fatal("P-0001 missing from dataset")
	}
	if rec.AdmissionTime == nil || rec.AdmissionTime.Day() != 1 {
		t.Fatalf("dedup kept admission %v, want the earlier 2021-01-01", rec.AdmissionTime)
	}

	q := result.Quality
	if q.TotalRecords != 3 || q.UniquePatients != 2 || q.DuplicatesCollapsed != 1 {
		t.Fatalf("quality counts = %+v", q)
	}
	if q.InvalidPhones != 3 {
		// All three records lack a valid phone: two absent, one malformed.
		t.Fatalf("invalid phones = %d, want 3", q.InvalidPhones)
	}
}

func TestRunPreservesInputOrderAcrossWorkers(t *testing.T) {
	runner := NewRunner(normalize.New(nil), 8)

	var batch []models.RawRecord
	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("%d", i)
		batch = append(batch, models.RawRecord{PatientID: &id})
	}

	ds := runner.NormalizeAndDeduplicate(context.Background(), batch)
	if ds.Len() != 500 {
		t.Fatalf("expected 500 unique patients, got %d", ds.Len())
	}
	// First-seen order must survive the concurrent fan-out.
	for i := 0; i < 500; i++ {
		want := fmt.Sprintf("P-%04d", i)
		if ds.Records[i].PatientID != want {
			t.Fatalf("record %d is %s, want %s", i, ds.Records[i].PatientID, want)
		}
	}
}

func TestRunEmptyBatch(t *testing.T) {
	runner := NewRunner(normalize.New(nil), 2)
	result := runner.Run(context.Background(), nil)
	if result.Dataset.Len() != 0 {
		t.Fatalf("expected empty dataset, got %d", result.Dataset.Len())
	}
	if result.Quality.TotalRecords != 0 {
		t.Fatalf("expected zero totals, got %+v", result.Quality)
	}
}

func TestRunCanceledContextStopsDispatch(t *testing.T) {
	runner := NewRunner(normalize.New(nil), 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := []models.RawRecord{{PatientID: strPtr("1")}, {PatientID: strPtr("2")}}
	result := runner.Run(ctx, batch)
	// Nothing dispatched after cancellation; partial output is still valid.
	if result.Dataset.Len() > len(batch) {
		t.Fatalf("dataset larger than batch: %d", result.Dataset.Len())
	}
	for _, rec := range result.Dataset.Records {
		if rec.PatientID == "" {
			t.Fatal("canceled run leaked an unnormalized record")
		}
	}
}
