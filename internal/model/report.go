package model

import "sort"

// MissingLabel substitutes blank customer group cells in the master sheet.
const MissingLabel = "Data Kosong"

// GrandTotalKey is the precomputed aggregate row key in the channel workbook.
const GrandTotalKey = "GRAND TOTAL"

// Metric names one per-entity value mapping inside a bundle.
type Metric string

const (
	MetricContribution   Metric = "cont"
	MetricValueMTD       Metric = "mtd"
	MetricValueYTD       Metric = "ytd"
	MetricGrowthMTD      Metric = "g_mtd"
	MetricGrowthL3M      Metric = "g_l3m"
	MetricGrowthYTD      Metric = "g_ytd"
	MetricAchievementMTD Metric = "a_mtd"
	MetricAchievementYTD Metric = "a_ytd"
)

// MetricOrder is the fixed column order of every rendered row.
var MetricOrder = []Metric{
	MetricContribution,
	MetricValueMTD,
	MetricValueYTD,
	MetricGrowthMTD,
	MetricGrowthL3M,
	MetricGrowthYTD,
	MetricAchievementMTD,
	MetricAchievementYTD,
}

// IsPercent reports whether the metric renders as a percentage column.
func (m Metric) IsPercent() bool {
	switch m {
	case MetricValueMTD, MetricValueYTD:
		return false
	default:
		return true
	}
}

// MetricValue is an optional numeric cell value. Valid=false means the source
// cell was blank; it renders as zero but is never stored as zero.
type MetricValue struct {
	Value float64
	Valid bool
}

// MetricMap maps an entity name to its extracted value.
type MetricMap map[string]MetricValue

// Get resolves a key, defaulting to an invalid (zero-rendering) value.
func (m MetricMap) Get(key string) MetricValue {
	if m == nil {
		return MetricValue{}
	}
	return m[key]
}

// MetricBundle holds the eight per-entity mappings built from one workbook.
type MetricBundle map[Metric]MetricMap

// Lookup resolves one metric for one entity, zero-defaulting on any miss.
func (b MetricBundle) Lookup(metric Metric, key string) MetricValue {
	if b == nil {
		return MetricValue{}
	}
	return b[metric].Get(key)
}

// Hierarchy is the channel → customer groups relation from the master sheet.
// Children are deduplicated and sorted ascending; the map is built once per
// master upload and never mutated afterwards.
type Hierarchy struct {
	Parents  []string            // sorted parent universe
	Children map[string][]string // parent → sorted distinct children
}

// Contains reports whether child is related to parent in the master sheet.
func (h *Hierarchy) Contains(parent, child string) bool {
	if h == nil {
		return false
	}
	for _, c := range h.Children[parent] {
		if c == child {
			return true
		}
	}
	return false
}

// ChildUniverse returns the sorted distinct children of the given parents.
func (h *Hierarchy) ChildUniverse(parents []string) []string {
	if h == nil {
		return nil
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range parents {
		for _, c := range h.Children[p] {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// FilterSelection is the caller-supplied parent/child selection. Order is
// user-controlled and preserved by row assembly.
type FilterSelection struct {
	Channels  []string `json:"channels"`
	Customers []string `json:"customers"`
}

// ReportRow is one assembled display row: a label, an indentation flag for
// child rows, and the eight metric values in MetricOrder.
type ReportRow struct {
	Label  string
	Indent bool
	Values []MetricValue
}

// DisplayTable is the on-screen rendering: pre-formatted strings, 9 columns.
type DisplayTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}
