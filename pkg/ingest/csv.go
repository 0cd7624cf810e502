package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/medcanon/platform/pkg/common/models"
)

// Columns recognized in a raw encounter export. Extra columns are ignored,
// missing columns simply leave the field absent.
var rawColumns = map[string]func(*models.RawRecord, *string){
	"patient_id":     func(r *models.RawRecord, v *string) { r.PatientID = v },
	"full_name":      func(r *models.RawRecord, v *string) { r.FullName = v },
	"gender":         func(r *models.RawRecord, v *string) { r.Gender = v },
	"date_of_birth":  func(r *models.RawRecord, v *string) { r.DateOfBirth = v },
	"phone":          func(r *models.RawRecord, v *string) { r.Phone = v },
	"admission_time": func(r *models.RawRecord, v *string) { r.AdmissionTime = v },
	"discharge_time": func(r *models.RawRecord, v *string) { r.DischargeTime = v },
	"vital_type":     func(r *models.RawRecord, v *string) { r.VitalType = v },
	"vital_value":    func(r *models.RawRecord, v *string) { r.VitalValue = v },
	"lab_test":       func(r *models.RawRecord, v *string) { r.LabTest = v },
	"lab_result":     func(r *models.RawRecord, v *string) { r.LabResult = v },
}

// ReadCSV decodes a header-driven CSV export into raw records. Cell values
// are passed through untouched; cleaning belongs to the pipeline, not the
// reader. An empty cell becomes an absent field.
func ReadCSV(r io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	setters := make([]func(*models.RawRecord, *string), len(header))
	known := 0
	for i, name := range header {
		if setter, ok := rawColumns[strings.ToLower(strings.TrimSpace(name))]; ok {
			setters[i] = setter
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("csv header has no recognized columns")
	}

	var records []models.RawRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		var rec models.RawRecord
		for i, cell := range row {
			if i >= len(setters) || setters[i] == nil {
				continue
			}
			if cell == "" {
				continue
			}
			value := cell
			setters[i](&rec, &value)
		}
		records = append(records, rec)
	}
	return records, nil
}
