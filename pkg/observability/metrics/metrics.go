package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/medcanon/platform/pkg/common/models"
)

var (
	runsCompleted       atomic.Int64
	recordsNormalized   atomic.Int64
	uniquePatients      atomic.Int64
	duplicatesCollapsed atomic.Int64
	placeholderIDs      atomic.Int64
	invalidPhones       atomic.Int64
	unknownLabels       atomic.Int64
	intakeAccepted      atomic.Int64
	intakePublished     atomic.Int64
	intakeFailed        atomic.Int64
)

// ObserveRun records the latest pipeline run's quality counters.
func ObserveRun(q models.QualitySummary) {
	runsCompleted.Add(1)
	recordsNormalized.Add(int64(q.TotalRecords))
	uniquePatients.Store(int64(q.UniquePatients))
	duplicatesCollapsed.Add(int64(q.DuplicatesCollapsed))
	placeholderIDs.Store(int64(q.PlaceholderIDs))
	invalidPhones.Store(int64(q.InvalidPhones))
	unknownLabels.Store(int64(q.UnknownGender + q.UnknownVitalType + q.UnknownLabTest))
}

func ObserveIntake(accepted, published, failed int) {
	intakeAccepted.Add(int64(accepted))
	intakePublished.Add(int64(published))
	intakeFailed.Add(int64(failed))
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP medcanon_pipeline_runs_total Number of pipeline runs completed.\n")
	fmt.Fprintf(w, "# TYPE medcanon_pipeline_runs_total counter\n")
	fmt.Fprintf(w, "medcanon_pipeline_runs_total %d\n", runsCompleted.Load())

	fmt.Fprintf(w, "# HELP medcanon_pipeline_records_normalized_total Number of raw records normalized.\n")
	fmt.Fprintf(w, "# TYPE medcanon_pipeline_records_normalized_total counter\n")
	fmt.Fprintf(w, "medcanon_pipeline_records_normalized_total %d\n", recordsNormalized.Load())

	fmt.Fprintf(w, "# HELP medcanon_pipeline_unique_patients Number of unique patients in the latest run.\n")
	fmt.Fprintf(w, "# TYPE medcanon_pipeline_unique_patients gauge\n")
	fmt.Fprintf(w, "medcanon_pipeline_unique_patients %d\n", uniquePatients.Load())

	fmt.Fprintf(w, "# HELP medcanon_pipeline_duplicates_collapsed_total Number of duplicate records collapsed by deduplication.\n")
	fmt.Fprintf(w, "# TYPE medcanon_pipeline_duplicates_collapsed_total counter\n")
	fmt.Fprintf(w, "medcanon_pipeline_duplicates_collapsed_total %d\n", duplicatesCollapsed.Load())

	fmt.Fprintf(w, "# HELP medcanon_quality_placeholder_ids Number of P-0000 identifiers in the latest run.\n")
	fmt.Fprintf(w, "# TYPE medcanon_quality_placeholder_ids gauge\n")
	fmt.Fprintf(w, "medcanon_quality_placeholder_ids %d\n", placeholderIDs.Load())

	fmt.Fprintf(w, "# HELP medcanon_quality_invalid_phones Number of invalid phone numbers in the latest run.\n")
	fmt.Fprintf(w, "# TYPE medcanon_quality_invalid_phones gauge\n")
	fmt.Fprintf(w, "medcanon_quality_invalid_phones %d\n", invalidPhones.Load())

	fmt.Fprintf(w, "# HELP medcanon_quality_unknown_labels Number of Unknown categorical labels in the latest run.\n")
	fmt.Fprintf(w, "# TYPE medcanon_quality_unknown_labels gauge\n")
	fmt.Fprintf(w, "medcanon_quality_unknown_labels %d\n", unknownLabels.Load())

	fmt.Fprintf(w, "# HELP medcanon_intake_accepted_total Number of intake batches accepted.\n")
	fmt.Fprintf(w, "# TYPE medcanon_intake_accepted_total counter\n")
	fmt.Fprintf(w, "medcanon_intake_accepted_total %d\n", intakeAccepted.Load())

	fmt.Fprintf(w, "# HELP medcanon_intake_published_total Number of intake batches published to the event bus.\n")
	fmt.Fprintf(w, "# TYPE medcanon_intake_published_total counter\n")
	fmt.Fprintf(w, "medcanon_intake_published_total %d\n", intakePublished.Load())

	fmt.Fprintf(w, "# HELP medcanon_intake_failed_total Number of intake batches that failed to publish.\n")
	fmt.Fprintf(w, "# TYPE medcanon_intake_failed_total counter\n")
	fmt.Fprintf(w, "medcanon_intake_failed_total %d\n", intakeFailed.Load())
}
