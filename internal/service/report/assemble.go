package report

import (
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
)

// AssembleRows produces the ordered report rows for one generation pass.
//
// Row 1 is always the grand-total row resolved against the channel bundle.
// Then per selected channel, in selection order: the channel row, followed by
// an indented row for each selected customer group the hierarchy places under
// that channel, again in selection order. A customer group outside the current
// channel's hierarchy entry is silently omitted there (it may still render
// under another selected channel). Metric misses resolve to zero field by
// field; no row is ever dropped for missing metrics.
func AssembleRows(channelBundle, customerBundle model.MetricBundle, hierarchy *model.Hierarchy, selection model.FilterSelection) []model.ReportRow {
	rows := []model.ReportRow{
		buildRow(model.GrandTotalKey, channelBundle, false),
	}

	for _, channel := range selection.Channels {
		rows = append(rows, buildRow(channel, channelBundle, false))
		for _, customer := range selection.Customers {
			if !hierarchy.Contains(channel, customer) {
				continue
			}
			rows = append(rows, buildRow(customer, customerBundle, true))
		}
	}

	return rows
}

func buildRow(label string, bundle model.MetricBundle, indent bool) model.ReportRow {
	values := make([]model.MetricValue, len(model.MetricOrder))
	for i, metric := range model.MetricOrder {
		values[i] = bundle.Lookup(metric, label)
	}
	return model.ReportRow{
		Label:  label,
		Indent: indent,
		Values: values,
	}
}
