package excel_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/service/excel"
)

func workbookBytes(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	header := []interface{}{"Customer P", "Current DO"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow failed: %v", err)
	}
	row := []interface{}{"Retail", 1000}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatalf("SetSheetRow failed: %v", err)
	}
	if _, err := f.NewSheet("Sheet 18"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

func TestParserLoadAndInspect(t *testing.T) {
	p := excel.NewParser()
	if err := p.LoadFile(bytes.NewReader(workbookBytes(t))); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	defer p.Close()

	p.SetFileName("channel.xlsx")
	if p.FileName() != "channel.xlsx" {
		t.Fatalf("FileName() = %q", p.FileName())
	}
	if p.FileID() == "" {
		t.Fatal("FileID() is empty")
	}

	sheets, err := p.GetSheets()
	if err != nil {
		t.Fatalf("GetSheets failed: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("GetSheets() = %+v, want 2 sheets", sheets)
	}
	if sheets[0].Name != "Sheet1" || sheets[0].RowCount != 2 {
		t.Fatalf("sheets[0] = %+v", sheets[0])
	}

	columns, err := p.GetColumns("Sheet1")
	if err != nil {
		t.Fatalf("GetColumns failed: %v", err)
	}
	if len(columns) != 2 || columns[0] != "Customer P" {
		t.Fatalf("GetColumns() = %v", columns)
	}
}

func TestParserFreshIDPerUpload(t *testing.T) {
	a := excel.NewParser()
	b := excel.NewParser()
	if a.FileID() == b.FileID() {
		t.Fatal("two parsers share a file ID")
	}
}

func TestParserRejectsGarbage(t *testing.T) {
	p := excel.NewParser()
	if err := p.LoadFile(bytes.NewReader([]byte("not a workbook"))); err == nil {
		t.Fatal("LoadFile accepted garbage input")
	}
}

func TestParserWithoutFile(t *testing.T) {
	p := excel.NewParser()
	if _, err := p.GetSheets(); err == nil {
		t.Fatal("GetSheets succeeded without a loaded file")
	}
	if _, err := p.GetColumns("Sheet1"); err == nil {
		t.Fatal("GetColumns succeeded without a loaded file")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close on empty parser returned %v", err)
	}
}
