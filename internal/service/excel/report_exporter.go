package excel

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/config"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/service/report"
)

// ReportExporter renders assembled report rows into a styled workbook.
type ReportExporter struct {
	cfg config.ExportConfig
}

// NewReportExporter creates an exporter with the given cosmetic settings
func NewReportExporter(cfg config.ExportConfig) *ReportExporter {
	if cfg.SheetName == "" {
		cfg.SheetName = "Report"
	}
	if cfg.LabelWidth <= 0 {
		cfg.LabelWidth = 36
	}
	if cfg.ValueWidth <= 0 {
		cfg.ValueWidth = 13
	}
	return &ReportExporter{cfg: cfg}
}

type reportStyles struct {
	title       int
	header      int
	label       int
	labelChild  int
	magnitude   int
	percentUp   int
	percentDown int
}

// Export writes the report to a new single-sheet workbook: a title row with
// the cut-off date, the 9-column header, then one row per report row.
// Percentage cells are written as fractions carrying a 0.0% number format,
// green for non-negative and red for negative values; magnitude cells are
// plain integers. Indented labels are written without their marker and styled
// instead.
func (e *ReportExporter) Export(rows []model.ReportRow, cutoff string) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := e.cfg.SheetName
	f.SetSheetName("Sheet1", sheet)

	styles, err := e.newStyles(f)
	if err != nil {
		return nil, err
	}

	title := "Channel & Customer Group Report"
	if cutoff != "" {
		title = fmt.Sprintf("%s (Cut-off: %s)", title, cutoff)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(report.DisplayColumns))
	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, err
	}
	f.SetCellValue(sheet, "A1", title)
	f.SetCellStyle(sheet, "A1", lastCol+"1", styles.title)

	for i, h := range report.DisplayColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A2", lastCol+"2", styles.header)

	for i, row := range rows {
		rowNum := i + 3
		if err := e.writeRow(f, sheet, rowNum, row, styles); err != nil {
			return nil, err
		}
	}

	f.SetColWidth(sheet, "A", "A", e.cfg.LabelWidth)
	f.SetColWidth(sheet, "B", lastCol, e.cfg.ValueWidth)

	return f, nil
}

func (e *ReportExporter) writeRow(f *excelize.File, sheet string, rowNum int, row model.ReportRow, styles reportStyles) error {
	labelCell, _ := excelize.CoordinatesToCellName(1, rowNum)
	// the indent marker is a display convention; the export carries the
	// literal entity name and expresses indentation through the style
	f.SetCellValue(sheet, labelCell, strings.TrimLeft(row.Label, " "))
	labelStyle := styles.label
	if row.Indent {
		labelStyle = styles.labelChild
	}
	f.SetCellStyle(sheet, labelCell, labelCell, labelStyle)

	for i, metric := range model.MetricOrder {
		cell, _ := excelize.CoordinatesToCellName(i+2, rowNum)
		value := row.Values[i]

		if !metric.IsPercent() {
			f.SetCellValue(sheet, cell, int64(math.Round(resolvedValue(value))))
			f.SetCellStyle(sheet, cell, cell, styles.magnitude)
			continue
		}

		v := resolvedValue(value)
		f.SetCellValue(sheet, cell, v/100)
		style := styles.percentUp
		if v < 0 {
			style = styles.percentDown
		}
		f.SetCellStyle(sheet, cell, cell, style)
	}

	return nil
}

func resolvedValue(v model.MetricValue) float64 {
	if !v.Valid {
		return 0
	}
	return v.Value
}

func (e *ReportExporter) newStyles(f *excelize.File) (reportStyles, error) {
	var styles reportStyles
	var err error

	styles.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return styles, err
	}

	styles.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return styles, err
	}

	styles.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return styles, err
	}

	styles.labelChild, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10, Color: "595959"},
		Alignment: &excelize.Alignment{Horizontal: "left", Indent: 1},
	})
	if err != nil {
		return styles, err
	}

	magnitudeFmt := "#,##0"
	styles.magnitude, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &magnitudeFmt,
	})
	if err != nil {
		return styles, err
	}

	percentFmt := "0.0%"
	styles.percentUp, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Color: "008000"},
		CustomNumFmt: &percentFmt,
	})
	if err != nil {
		return styles, err
	}

	styles.percentDown, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Color: "C00000"},
		CustomNumFmt: &percentFmt,
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}
