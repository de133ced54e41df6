package report_test

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/service/report"
)

func buildSheet(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("NewSheet(%s) failed: %v", sheet, err)
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := rows[i]
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow(%s) failed: %v", sheet, err)
		}
	}
}

func TestExtractPercentPreformattedText(t *testing.T) {
	f := excelize.NewFile()
	buildSheet(t, f, "Metrics", [][]interface{}{
		{"Customer P", "vs LY"},
		{"Retail", "12.5%"},
		{"Wholesale", "12,5%"},
		{"Online", "-3,4%"},
	})

	out, err := report.Extract(f, "Metrics", "Customer P", "vs LY", report.TransformPercent, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	for key, want := range map[string]float64{"Retail": 12.5, "Wholesale": 12.5, "Online": -3.4} {
		got := out[key]
		if !got.Valid || got.Value != want {
			t.Fatalf("out[%q]=%+v, want valid %v", key, got, want)
		}
	}
}

func TestExtractPercentNumericFraction(t *testing.T) {
	f := excelize.NewFile()
	buildSheet(t, f, "Metrics", [][]interface{}{
		{"Customer P", "vs LY"},
		{"Retail", 0.125},
		{"Online", -0.034},
	})

	out, err := report.Extract(f, "Metrics", "Customer P", "vs LY", report.TransformPercent, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if got := out["Retail"]; got.Value != 12.5 {
		t.Fatalf("Retail=%v, want 12.5", got.Value)
	}
	if got := out["Online"]; got.Value != -3.4 {
		t.Fatalf("Online=%v, want -3.4", got.Value)
	}
}

func TestExtractMagnitudeRounds(t *testing.T) {
	f := excelize.NewFile()
	buildSheet(t, f, "Values", [][]interface{}{
		{"Customer P", "Current DO"},
		{"Retail", 1000.4},
		{"Online", 999.6},
	})

	out, err := report.Extract(f, "Values", "Customer P", "Current DO", report.TransformMagnitude, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if got := out["Retail"]; got.Value != 1000 {
		t.Fatalf("Retail=%v, want 1000", got.Value)
	}
	if got := out["Online"]; got.Value != 1000 {
		t.Fatalf("Online=%v, want 1000", got.Value)
	}
}

func TestExtractHeaderSkip(t *testing.T) {
	f := excelize.NewFile()
	buildSheet(t, f, "Growth", [][]interface{}{
		{"MTD Growth vs Last Year"},
		{"Customer P", "vs LY"},
		{"Retail", "4.2%"},
	})

	out, err := report.Extract(f, "Growth", "Customer P", "vs LY", report.TransformPercent, 1)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got := out["Retail"]; got.Value != 4.2 {
		t.Fatalf("Retail=%v, want 4.2", got.Value)
	}
}

func TestExtractMissingColumn(t *testing.T) {
	f := excelize.NewFile()
	buildSheet(t, f, "Metrics", [][]interface{}{
		{"Customer P", "vs LY"},
		{"Retail", "4.2%"},
	})

	_, err := report.Extract(f, "Metrics", "Customer P", "vs L3M", report.TransformPercent, 0)
	var missing *model.MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("err=%v, want MissingColumnError", err)
	}
	if missing.Sheet != "Metrics" || missing.Column != "vs L3M" {
		t.Fatalf("missing=%+v, want sheet Metrics column vs L3M", missing)
	}

	_, err = report.Extract(f, "Metrics", "Nope", "vs LY", report.TransformPercent, 0)
	if !errors.As(err, &missing) {
		t.Fatalf("err=%v, want MissingColumnError for key column", err)
	}
}

func TestExtractMissingSheet(t *testing.T) {
	f := excelize.NewFile()

	_, err := report.Extract(f, "Nope", "Customer P", "vs LY", report.TransformPercent, 0)
	var missing *model.MissingSheetError
	if !errors.As(err, &missing) {
		t.Fatalf("err=%v, want MissingSheetError", err)
	}
	if missing.Sheet != "Nope" {
		t.Fatalf("missing sheet=%q, want Nope", missing.Sheet)
	}
}

func TestExtractDuplicateKeysLastWins(t *testing.T) {
	f := excelize.NewFile()
	buildSheet(t, f, "Values", [][]interface{}{
		{"Customer P", "Current DO"},
		{"Retail", 100},
		{"Retail", 250},
	})

	out, err := report.Extract(f, "Values", "Customer P", "Current DO", report.TransformMagnitude, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got := out["Retail"]; got.Value != 250 {
		t.Fatalf("Retail=%v, want 250 (last row wins)", got.Value)
	}
}

func TestExtractBlankCells(t *testing.T) {
	f := excelize.NewFile()
	buildSheet(t, f, "Values", [][]interface{}{
		{"Customer P", "Current DO"},
		{"Retail", nil},
		{nil, 500},
		{"Online", "n/a"},
	})

	out, err := report.Extract(f, "Values", "Customer P", "Current DO", report.TransformMagnitude, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// blank value: key present, value invalid, never zero-filled at extraction
	got, ok := out["Retail"]
	if !ok {
		t.Fatalf("Retail should be present")
	}
	if got.Valid {
		t.Fatalf("Retail=%+v, want invalid", got)
	}

	// blank key: row skipped entirely
	if len(out) != 1 {
		t.Fatalf("len(out)=%d, want 1 (blank key and bad value rows skipped)", len(out))
	}

	// unparseable value: row skipped
	if _, ok := out["Online"]; ok {
		t.Fatalf("Online should be skipped, got %+v", out["Online"])
	}
}

func TestCacheServesMemoizedResultUntilInvalidated(t *testing.T) {
	f := excelize.NewFile()
	buildSheet(t, f, "Values", [][]interface{}{
		{"Customer P", "Current DO"},
		{"Retail", 100},
	})

	cache := report.NewCache()
	first, err := cache.Extract("file-1", f, "Values", "Customer P", "Current DO", report.TransformMagnitude, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if first["Retail"].Value != 100 {
		t.Fatalf("Retail=%v, want 100", first["Retail"].Value)
	}

	// mutate the workbook behind the cache's back
	if err := f.SetCellValue("Values", "B2", 900); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}

	second, err := cache.Extract("file-1", f, "Values", "Customer P", "Current DO", report.TransformMagnitude, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if second["Retail"].Value != 100 {
		t.Fatalf("Retail=%v, want memoized 100", second["Retail"].Value)
	}

	cache.Invalidate("file-1")
	third, err := cache.Extract("file-1", f, "Values", "Customer P", "Current DO", report.TransformMagnitude, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if third["Retail"].Value != 900 {
		t.Fatalf("Retail=%v, want 900 after invalidation", third["Retail"].Value)
	}
}

func TestCacheKeyIncludesTransform(t *testing.T) {
	f := excelize.NewFile()
	buildSheet(t, f, "Values", [][]interface{}{
		{"Customer P", "Current DO"},
		{"Retail", 0.5},
	})

	cache := report.NewCache()
	asMagnitude, err := cache.Extract("file-1", f, "Values", "Customer P", "Current DO", report.TransformMagnitude, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	asPercent, err := cache.Extract("file-1", f, "Values", "Customer P", "Current DO", report.TransformPercent, 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if asMagnitude["Retail"].Value != 1 {
		t.Fatalf("magnitude=%v, want 1", asMagnitude["Retail"].Value)
	}
	if asPercent["Retail"].Value != 50 {
		t.Fatalf("percent=%v, want 50 (must not reuse the magnitude entry)", asPercent["Retail"].Value)
	}
	if cache.Len() != 2 {
		t.Fatalf("cache.Len()=%d, want 2", cache.Len())
	}
}
