package dashboard

import (
	"maps"
	"slices"
)

// SelectorAll selects every company.
const SelectorAll = "ALL"

// CategoryCount is one slice of a chart, keyed by division, status or type.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DivisionStatus counts open (N) and closed (Y) items per division.
type DivisionStatus struct {
	Division string `json:"division"`
	Y        int    `json:"Y"`
	N        int    `json:"N"`
}

// MergeByCategory sums counts sharing a category. Categories keep the order
// in which they were first seen, array by array.
func MergeByCategory(arrays ...[]CategoryCount) []CategoryCount {
	index := make(map[string]int)
	out := make([]CategoryCount, 0)
	for _, arr := range arrays {
		for _, c := range arr {
			pos, ok := index[c.Category]
			if !ok {
				pos = len(out)
				index[c.Category] = pos
				out = append(out, CategoryCount{Category: c.Category})
			}
			out[pos].Count += c.Count
		}
	}
	return out
}

// TotalBySelector returns the value for one company, or the sum over every
// company when the selector is ALL. Unknown companies count as zero.
func TotalBySelector(byCompany map[string]int, selector string) int {
	if selector == SelectorAll {
		total := 0
		for _, v := range byCompany {
			total += v
		}
		return total
	}
	return byCompany[selector]
}

// SelectCategories picks one company's breakdown, or merges every company's
// breakdown for ALL.
func SelectCategories(byCompany map[string][]CategoryCount, selector string) []CategoryCount {
	if selector == SelectorAll {
		arrays := make([][]CategoryCount, 0, len(byCompany))
		for _, company := range companyOrder(byCompany) {
			arrays = append(arrays, byCompany[company])
		}
		return MergeByCategory(arrays...)
	}
	return MergeByCategory(byCompany[selector])
}

// ConcatByCompany joins every company's rows for ALL without merging them;
// the chart merges per division itself.
func ConcatByCompany(byCompany map[string][]DivisionStatus, selector string) []DivisionStatus {
	out := make([]DivisionStatus, 0)
	if selector != SelectorAll {
		return append(out, byCompany[selector]...)
	}
	for _, company := range companyOrder(byCompany) {
		out = append(out, byCompany[company]...)
	}
	return out
}

// MergeStatusByDivision sums Y and N per division in first-seen order.
func MergeStatusByDivision(rows []DivisionStatus) []DivisionStatus {
	index := make(map[string]int)
	out := make([]DivisionStatus, 0)
	for _, r := range rows {
		pos, ok := index[r.Division]
		if !ok {
			pos = len(out)
			index[r.Division] = pos
			out = append(out, DivisionStatus{Division: r.Division})
		}
		out[pos].Y += r.Y
		out[pos].N += r.N
	}
	return out
}

// companyOrder gives ALL merges a stable company order.
func companyOrder[V any](byCompany map[string]V) []string {
	return slices.Sorted(maps.Keys(byCompany))
}
