package report

import (
	"fmt"
	"strconv"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
)

// DisplayColumns is the 9-column header of both output surfaces.
var DisplayColumns = []string{
	"Channel / Customer",
	"Cont YTD",
	"Value MTD",
	"Value YTD",
	"Growth MTD",
	"%Gr L3M",
	"Growth YTD",
	"Ach MTD",
	"Ach YTD",
}

// IndentPrefix marks indented labels in the on-screen table.
const IndentPrefix = "    "

// RenderDisplay formats assembled rows for the on-screen table. Percentage
// columns render with one decimal and a trailing percent sign, blanks as "0%";
// magnitude columns render as plain integers. Child labels get the indent
// prefix.
func RenderDisplay(rows []model.ReportRow) *model.DisplayTable {
	table := &model.DisplayTable{
		Columns: DisplayColumns,
		Rows:    make([][]string, 0, len(rows)),
	}

	for _, row := range rows {
		label := row.Label
		if row.Indent {
			label = IndentPrefix + label
		}

		cells := make([]string, 0, len(DisplayColumns))
		cells = append(cells, label)
		for i, metric := range model.MetricOrder {
			if metric.IsPercent() {
				cells = append(cells, FormatPercent(row.Values[i]))
			} else {
				cells = append(cells, FormatMagnitude(row.Values[i]))
			}
		}
		table.Rows = append(table.Rows, cells)
	}

	return table
}

// FormatPercent renders a percentage value for display
func FormatPercent(v model.MetricValue) string {
	if !v.Valid {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", v.Value)
}

// FormatMagnitude renders a whole-number value for display
func FormatMagnitude(v model.MetricValue) string {
	if !v.Valid {
		return "0"
	}
	return strconv.FormatFloat(v.Value, 'f', 0, 64)
}
