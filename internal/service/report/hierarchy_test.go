package report_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/service/report"
)

var (
	channelCandidates  = []string{"CHANNEL_REPORT_NAME", "CHANNEL_NAME", "CHANNEL", "SALES_CHANNEL"}
	customerCandidates = []string{"CUSTOMER_GROUP", "CUSTOMER_NAME", "CUSTOMER", "CUST_GROUP"}
)

func buildMasterWorkbook(t *testing.T, header []interface{}, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	all := append([][]interface{}{header}, rows...)
	for i := range all {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := all[i]
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	return f
}

func TestBuildHierarchyGroupsSortsDedupes(t *testing.T) {
	f := buildMasterWorkbook(t,
		[]interface{}{"CHANNEL_REPORT_NAME", "CUSTOMER_GROUP", "REGION"},
		[][]interface{}{
			{"Retail", "Beta", "West"},
			{"Retail", "Alpha", "East"},
			{"Retail", "Beta", "North"},
			{"Online", "Gamma", "East"},
		})

	h, err := report.BuildHierarchy(f, "Sheet1", channelCandidates, customerCandidates)
	if err != nil {
		t.Fatalf("BuildHierarchy failed: %v", err)
	}

	if !reflect.DeepEqual(h.Parents, []string{"Online", "Retail"}) {
		t.Fatalf("Parents=%v, want [Online Retail]", h.Parents)
	}
	if !reflect.DeepEqual(h.Children["Retail"], []string{"Alpha", "Beta"}) {
		t.Fatalf("Children[Retail]=%v, want [Alpha Beta]", h.Children["Retail"])
	}
	if !h.Contains("Retail", "Alpha") || h.Contains("Online", "Alpha") {
		t.Fatalf("containment wrong: %v", h.Children)
	}
}

func TestBuildHierarchyBlankCells(t *testing.T) {
	f := buildMasterWorkbook(t,
		[]interface{}{"CHANNEL", "CUSTOMER"},
		[][]interface{}{
			{"Retail", nil},
			{nil, "Orphan"},
			{"Retail", "Alpha"},
		})

	h, err := report.BuildHierarchy(f, "Sheet1", channelCandidates, customerCandidates)
	if err != nil {
		t.Fatalf("BuildHierarchy failed: %v", err)
	}

	// blank customer becomes the sentinel, blank channel drops the row
	if !reflect.DeepEqual(h.Children["Retail"], []string{"Alpha", model.MissingLabel}) {
		t.Fatalf("Children[Retail]=%v, want [Alpha %s]", h.Children["Retail"], model.MissingLabel)
	}
	if len(h.Parents) != 1 {
		t.Fatalf("Parents=%v, want only Retail", h.Parents)
	}
}

func TestBuildHierarchyCandidatePriority(t *testing.T) {
	// both a low- and a high-priority spelling present: the first candidate wins
	f := buildMasterWorkbook(t,
		[]interface{}{"SALES_CHANNEL", "CHANNEL_REPORT_NAME", "CUSTOMER_GROUP"},
		[][]interface{}{
			{"wrong", "Retail", "Alpha"},
		})

	h, err := report.BuildHierarchy(f, "Sheet1", channelCandidates, customerCandidates)
	if err != nil {
		t.Fatalf("BuildHierarchy failed: %v", err)
	}
	if !reflect.DeepEqual(h.Parents, []string{"Retail"}) {
		t.Fatalf("Parents=%v, want [Retail] via CHANNEL_REPORT_NAME", h.Parents)
	}
}

func TestBuildHierarchyMissingColumns(t *testing.T) {
	f := buildMasterWorkbook(t,
		[]interface{}{"SOMETHING", "ELSE"},
		[][]interface{}{{"a", "b"}})

	_, err := report.BuildHierarchy(f, "Sheet1", channelCandidates, customerCandidates)
	var missing *model.MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("err=%v, want MissingColumnError", err)
	}
	if missing.Sheet != "Sheet1" {
		t.Fatalf("missing sheet=%q, want Sheet1", missing.Sheet)
	}
}

func TestResolveColumn(t *testing.T) {
	header := []string{"REGION", "CHANNEL", "CUSTOMER_GROUP"}

	col, ok := report.ResolveColumn(header, channelCandidates)
	if !ok || col != "CHANNEL" {
		t.Fatalf("ResolveColumn=%q/%v, want CHANNEL", col, ok)
	}

	if _, ok := report.ResolveColumn(header, []string{"NOPE"}); ok {
		t.Fatalf("ResolveColumn should miss")
	}
}

func TestChildUniverse(t *testing.T) {
	h := &model.Hierarchy{
		Parents: []string{"Online", "Retail"},
		Children: map[string][]string{
			"Retail": {"Alpha", "Beta"},
			"Online": {"Beta", "Gamma"},
		},
	}

	got := h.ChildUniverse([]string{"Retail", "Online"})
	if !reflect.DeepEqual(got, []string{"Alpha", "Beta", "Gamma"}) {
		t.Fatalf("ChildUniverse=%v", got)
	}
}
