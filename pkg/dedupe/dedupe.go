package dedupe

import (
	"github.com/medcanon/platform/pkg/common/models"
)

// Deduplicate collapses a normalized batch to one record per patient id.
// Within a group the earliest admission time wins; a record with no admission
// time never beats one that has it; remaining ties keep the first-seen record.
// Output order follows the first appearance of each patient id in the input.
func Deduplicate(records []models.CleanRecord) *models.CanonicalDataset {
	kept := make([]models.CleanRecord, 0, len(records))
	byID := make(map[string]int, len(records))

	for _, rec := range records {
		i, seen := byID[rec.PatientID]
		if !seen {
			byID[rec.PatientID] = len(kept)
			kept = append(kept, rec)
			continue
		}
		if earlier(rec, kept[i]) {
			kept[i] = rec
		}
	}

	return models.NewCanonicalDataset(kept)
}

// earlier reports whether the challenger strictly beats the incumbent.
// Equal admission times keep the incumbent (stable, first-seen-wins).
func earlier(challenger, incumbent models.CleanRecord) bool {
	switch {
	case challenger.AdmissionTime == nil:
		return false
	case incumbent.AdmissionTime == nil:
		return true
	default:
		return challenger.AdmissionTime.Before(*incumbent.AdmissionTime)
	}
}
