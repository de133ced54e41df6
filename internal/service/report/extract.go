package report

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
)

// Transform names the value coercion applied during extraction. The name is
// part of the extraction cache key, so two transforms over the same raw
// columns can never share a cached result.
type Transform string

const (
	// TransformPercent normalizes a percentage cell to percentage units with
	// one decimal. Pre-formatted text ("12.5%", "12,5%") is stripped and
	// parsed as-is; a bare numeric cell is read as a fraction and multiplied
	// by 100.
	TransformPercent Transform = "percent"
	// TransformMagnitude normalizes a whole-number cell to zero decimals.
	TransformMagnitude Transform = "magnitude"
)

// Extract builds an entity → value mapping from one sheet. The header row sits
// after skip discarded rows; both columns must exist in it or the extraction
// fails with a MissingColumnError before any data row is read. Rows with a
// blank key cell are skipped (later rows win on repeated keys); a blank value
// cell yields an invalid MetricValue, never zero. A non-blank value the
// transform cannot coerce skips that row.
func Extract(wb *excelize.File, sheet, keyColumn, valueColumn string, transform Transform, skip int) (model.MetricMap, error) {
	if idx, _ := wb.GetSheetIndex(sheet); idx < 0 {
		return nil, &model.MissingSheetError{Sheet: sheet}
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	if len(rows) <= skip {
		return nil, &model.MissingColumnError{Sheet: sheet, Column: keyColumn}
	}

	header := rows[skip]
	keyIdx := findColumn(header, keyColumn)
	if keyIdx < 0 {
		return nil, &model.MissingColumnError{Sheet: sheet, Column: keyColumn}
	}
	valIdx := findColumn(header, valueColumn)
	if valIdx < 0 {
		return nil, &model.MissingColumnError{Sheet: sheet, Column: valueColumn}
	}

	out := make(model.MetricMap)
	for _, row := range rows[skip+1:] {
		key := cellAt(row, keyIdx)
		if key == "" {
			continue
		}

		raw := cellAt(row, valIdx)
		if raw == "" {
			out[key] = model.MetricValue{}
			continue
		}

		value, ok := applyTransform(transform, raw)
		if !ok {
			continue
		}
		out[key] = model.MetricValue{Value: value, Valid: true}
	}

	return out, nil
}

func findColumn(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func applyTransform(transform Transform, raw string) (float64, bool) {
	switch transform {
	case TransformPercent:
		return parsePercent(raw)
	case TransformMagnitude:
		return parseMagnitude(raw)
	default:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return 0, false
		}
		v, _ := d.Float64()
		return v, true
	}
}

// parsePercent handles workbooks where percentages are sometimes pre-formatted
// text and sometimes numeric fractions. A token carrying a percent sign or a
// decimal comma is already in percentage units; anything else is a fraction.
func parsePercent(raw string) (float64, bool) {
	if strings.ContainsAny(raw, "%,") {
		s := strings.ReplaceAll(raw, "%", "")
		s = strings.ReplaceAll(s, ",", ".")
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		v, _ := d.Round(1).Float64()
		return v, true
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	v, _ := d.Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return v, true
}

func parseMagnitude(raw string) (float64, bool) {
	// thousand separators show up in formatted magnitude cells
	s := strings.ReplaceAll(raw, ",", "")
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	v, _ := d.Round(0).Float64()
	return v, true
}
