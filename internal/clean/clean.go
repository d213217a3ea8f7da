// Package clean filters OCR noise, label leakage and format violations out
// of a finalized field map.
package clean

import (
	"log/slog"
	"sort"

	"github.com/MeKo-Tech/fieldex/internal/extract"
	"github.com/MeKo-Tech/fieldex/internal/schema"
)

// Report summarizes a cleaning pass for observability.
type Report struct {
	TotalExtracted    int      `json:"total_extracted"`
	ValidFields       int      `json:"valid_fields"`
	RemovedFields     int      `json:"removed_fields"`
	RemovedFieldNames []string `json:"removed_field_names"`
	QualityPercentage float64  `json:"quality_percentage"`
}

// Cleaner applies the per-field validation rules of its schema.
type Cleaner struct {
	schema *schema.Schema
}

// New creates a cleaner for the given schema.
func New(s *schema.Schema) *Cleaner {
	return &Cleaner{schema: s}
}

// Clean validates every field and returns the surviving map plus a quality
// report. Rejected fields are dropped, never corrected; rejection is logged
// but not surfaced as an error.
func (c *Cleaner) Clean(fields extract.FieldMap) (extract.FieldMap, Report) {
	out := make(extract.FieldMap, len(fields))
	report := Report{TotalExtracted: len(fields)}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := c.validate(key, fields[key])
		if !ok {
			report.RemovedFields++
			report.RemovedFieldNames = append(report.RemovedFieldNames, key)
			slog.Debug("dropped invalid field", "field", key)
			continue
		}
		out[key] = value
	}

	report.ValidFields = len(out)
	if report.TotalExtracted > 0 {
		report.QualityPercentage = 100.0 * float64(report.ValidFields) / float64(report.TotalExtracted)
	}
	return out, report
}

// validate runs the generic rules followed by the field-specific validator.
// It may rewrite the value (address prefix stripping); a false return drops
// the field.
func (c *Cleaner) validate(key, value string) (string, bool) {
	if isGarbage(value) {
		return "", false
	}
	if c.isLabelLeak(value) {
		return "", false
	}

	kind := schema.KindText
	minLen := 0
	if f, ok := c.schema.Field(key); ok {
		kind = f.Kind
		minLen = f.MinLength
	}

	switch kind {
	case schema.KindPhone:
		return value, validPhone(value)
	case schema.KindDate:
		return value, validDate(value)
	case schema.KindName:
		return value, c.validName(value, minLen)
	case schema.KindAddress:
		return c.cleanAddress(key, value, minLen)
	case schema.KindEmail:
		return value, validEmail(value)
	default:
		return value, true
	}
}

// isLabelLeak rejects values that are themselves a field label (leaked
// header text), using the same matching family as label detection.
func (c *Cleaner) isLabelLeak(value string) bool {
	_, isLabel := c.schema.IsLabel(value)
	return isLabel
}
