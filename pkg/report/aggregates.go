package report

import (
	"sort"
	"time"

	"github.com/medcanon/platform/pkg/common/models"
)

// Read-only aggregates over a canonical dataset. Records with the relevant
// field absent are skipped, never defaulted; the quality summary already
// accounts for them.

var ageBuckets = []struct {
	label string
	max   int // inclusive upper bound in years
}{
	{"0-17", 17},
	{"18-39", 39},
	{"40-64", 64},
	{"65+", 1 << 30},
}

func AgeDistribution(ds *models.CanonicalDataset, asOf time.Time) map[string]int {
	dist := make(map[string]int)
	for _, rec := range ds.Records {
		if rec.DateOfBirth == nil {
			continue
		}
		age := yearsBetween(*rec.DateOfBirth, asOf)
		if age < 0 {
			continue
		}
		for _, bucket := range ageBuckets {
			if age <= bucket.max {
				dist[bucket.label]++
				break
			}
		}
	}
	return dist
}

func GenderDistribution(ds *models.CanonicalDataset) map[string]int {
	dist := make(map[string]int)
	for _, rec := range ds.Records {
		dist[rec.Gender]++
	}
	return dist
}

type StayStats struct {
	Count       int     `json:"count"`
	MeanHours   float64 `json:"mean_hours"`
	MedianHours float64 `json:"median_hours"`
}

// LengthOfStay covers records with both admission and discharge present and
// discharge not before admission.
func LengthOfStay(ds *models.CanonicalDataset) StayStats {
	var hours []float64
	for _, rec := range ds.Records {
		if rec.AdmissionTime == nil || rec.DischargeTime == nil {
			continue
		}
		stay := rec.DischargeTime.Sub(*rec.AdmissionTime)
		if stay < 0 {
			continue
		}
		hours = append(hours, stay.Hours())
	}
	if len(hours) == 0 {
		return StayStats{}
	}

	sort.Float64s(hours)
	var total float64
	for _, h := range hours {
		total += h
	}
	mid := len(hours) / 2
	median := hours[mid]
	if len(hours)%2 == 0 {
		median = (hours[mid-1] + hours[mid]) / 2
	}
	return StayStats{
		Count:       len(hours),
		MeanHours:   total / float64(len(hours)),
		MedianHours: median,
	}
}

type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// AdmissionTrend counts admissions per calendar month, ascending.
func AdmissionTrend(ds *models.CanonicalDataset) []MonthCount {
	counts := make(map[string]int)
	for _, rec := range ds.Records {
		if rec.AdmissionTime == nil {
			continue
		}
		counts[rec.AdmissionTime.Format("2006-01")]++
	}

	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)

	trend := make([]MonthCount, 0, len(months))
	for _, m := range months {
		trend = append(trend, MonthCount{Month: m, Count: counts[m]})
	}
	return trend
}

func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	anniversary := from.AddDate(years, 0, 0)
	if anniversary.After(to) {
		years--
	}
	return years
}
