package report

import (
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
)

// ResolveColumn picks the first candidate header present in the sheet schema.
// Candidate order is priority order; headers are matched after trimming.
func ResolveColumn(header []string, candidates []string) (string, bool) {
	for _, cand := range candidates {
		if findColumn(header, cand) >= 0 {
			return cand, true
		}
	}
	return "", false
}

// BuildHierarchy groups the master sheet by channel and collects the distinct
// customer groups under each one, sorted ascending. Rows with a blank channel
// are dropped; a blank customer group becomes the missing-data label. The
// channel and customer columns are resolved against prioritized candidate
// lists and their absence is fatal; the caller has to remap columns before
// retrying.
func BuildHierarchy(wb *excelize.File, sheet string, channelCandidates, customerCandidates []string) (*model.Hierarchy, error) {
	if idx, _ := wb.GetSheetIndex(sheet); idx < 0 {
		return nil, &model.MissingSheetError{Sheet: sheet}
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &model.MissingColumnError{Sheet: sheet, Column: strings.Join(channelCandidates, "/")}
	}

	header := rows[0]
	channelColumn, ok := ResolveColumn(header, channelCandidates)
	if !ok {
		return nil, &model.MissingColumnError{Sheet: sheet, Column: strings.Join(channelCandidates, "/")}
	}
	customerColumn, ok := ResolveColumn(header, customerCandidates)
	if !ok {
		return nil, &model.MissingColumnError{Sheet: sheet, Column: strings.Join(customerCandidates, "/")}
	}

	channelIdx := findColumn(header, channelColumn)
	customerIdx := findColumn(header, customerColumn)

	groups := make(map[string]map[string]struct{})
	for _, row := range rows[1:] {
		channel := cellAt(row, channelIdx)
		if channel == "" {
			continue
		}

		customer := cellAt(row, customerIdx)
		if customer == "" {
			customer = model.MissingLabel
		}

		if groups[channel] == nil {
			groups[channel] = make(map[string]struct{})
		}
		groups[channel][customer] = struct{}{}
	}

	hierarchy := &model.Hierarchy{
		Parents:  make([]string, 0, len(groups)),
		Children: make(map[string][]string, len(groups)),
	}
	for channel, set := range groups {
		children := make([]string, 0, len(set))
		for customer := range set {
			children = append(children, customer)
		}
		sort.Strings(children)

		hierarchy.Parents = append(hierarchy.Parents, channel)
		hierarchy.Children[channel] = children
	}
	sort.Strings(hierarchy.Parents)

	return hierarchy, nil
}
