package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
)

// metricSpec ties one report metric to its location in the source workbook
// layout. The same table applies to the channel and the customer workbook;
// only the entities in the key column differ.
type metricSpec struct {
	Metric      model.Metric
	Sheet       string
	KeyColumn   string
	ValueColumn string
	Transform   Transform
	Skip        int
}

const entityKeyColumn = "Customer P"

var metricSpecs = []metricSpec{
	{model.MetricContribution, "Sheet 18", entityKeyColumn, "% of Total Current DO TP2 along Customer P, Customer P Hidden", TransformPercent, 0},
	{model.MetricValueMTD, "Sheet 1", entityKeyColumn, "Current DO", TransformMagnitude, 0},
	{model.MetricValueYTD, "Sheet 1", entityKeyColumn, "Current DO TP2", TransformMagnitude, 0},
	{model.MetricGrowthMTD, "Sheet 4", entityKeyColumn, "vs LY", TransformPercent, 1},
	{model.MetricGrowthL3M, "Sheet 3", entityKeyColumn, "vs L3M", TransformPercent, 1},
	{model.MetricGrowthYTD, "Sheet 5", entityKeyColumn, "vs LY", TransformPercent, 1},
	{model.MetricAchievementMTD, "Sheet 13", entityKeyColumn, "Current Achievement", TransformPercent, 0},
	{model.MetricAchievementYTD, "Sheet 14", entityKeyColumn, "Current Achievement TP2", TransformPercent, 0},
}

// BuildBundle extracts all eight metrics from one workbook. The metrics are
// independent of each other, but any missing sheet or column fails the whole
// bundle; a report over a partially readable workbook is never built.
func BuildBundle(fileID string, wb *excelize.File, cache *Cache) (model.MetricBundle, error) {
	bundle := make(model.MetricBundle, len(metricSpecs))

	for _, spec := range metricSpecs {
		var (
			mapping model.MetricMap
			err     error
		)
		if cache != nil {
			mapping, err = cache.Extract(fileID, wb, spec.Sheet, spec.KeyColumn, spec.ValueColumn, spec.Transform, spec.Skip)
		} else {
			mapping, err = Extract(wb, spec.Sheet, spec.KeyColumn, spec.ValueColumn, spec.Transform, spec.Skip)
		}
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", spec.Metric, err)
		}
		bundle[spec.Metric] = mapping
	}

	return bundle, nil
}
