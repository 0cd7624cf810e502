package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/medcanon/platform/pkg/common/models"
)

var (
	errInvalidSource = errors.New("invalid source")
	errEmptyBatch    = errors.New("empty record batch")
	errBatchTooBig   = errors.New("batch exceeds size limit")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

type Validator struct {
	allowedSources map[string]struct{}
	maxBatchSize   int
}

func NewValidator(sources []string, maxBatchSize int) *Validator {
	vs := make(map[string]struct{})
	for _, src := range sources {
		if trimmed := strings.TrimSpace(strings.ToLower(src)); trimmed != "" {
			vs[trimmed] = struct{}{}
		}
	}
	return &Validator{allowedSources: vs, maxBatchSize: maxBatchSize}
}

func (v *Validator) Validate(req models.IntakeRequest) error {
	if v == nil {
		return ValidationError{reason: errors.New("validator not initialised")}
	}

	source := strings.TrimSpace(strings.ToLower(req.Source))
	if source == "" {
		return ValidationError{reason: fmt.Errorf("source required: %w", errInvalidSource)}
	}
	if len(v.allowedSources) > 0 {
		if _, ok := v.allowedSources[source]; !ok {
			return ValidationError{reason: fmt.Errorf("source '%s' not allowed: %w", source, errInvalidSource)}
		}
	}

	if len(req.Records) == 0 {
		return ValidationError{reason: errEmptyBatch}
	}
	if v.maxBatchSize > 0 && len(req.Records) > v.maxBatchSize {
		return ValidationError{reason: fmt.Errorf("batch of %d records: %w", len(req.Records), errBatchTooBig)}
	}

	return nil
}
