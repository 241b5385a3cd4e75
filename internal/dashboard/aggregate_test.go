package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeByCategoryKeepsFirstSeenOrder(t *testing.T) {
	got := MergeByCategory(
		[]CategoryCount{{Category: "FANS", Count: 2}, {Category: "PUMPS", Count: 1}},
		[]CategoryCount{{Category: "LIGHTING", Count: 4}, {Category: "FANS", Count: 3}},
	)
	require.Equal(t, []CategoryCount{
		{Category: "FANS", Count: 5},
		{Category: "PUMPS", Count: 1},
		{Category: "LIGHTING", Count: 4},
	}, got)
}

func TestMergeByCategorySumsIndependentOfArrayOrder(t *testing.T) {
	a := []CategoryCount{{Category: "FANS", Count: 2}, {Category: "PUMPS", Count: 1}}
	b := []CategoryCount{{Category: "PUMPS", Count: 6}}
	sums := func(cs []CategoryCount) map[string]int {
		out := map[string]int{}
		for _, c := range cs {
			out[c.Category] = c.Count
		}
		return out
	}
	require.Equal(t, sums(MergeByCategory(a, b)), sums(MergeByCategory(b, a)))

	merged := MergeByCategory(a, b)
	require.Equal(t, merged, MergeByCategory(merged))
	require.Empty(t, MergeByCategory())
}

func TestTotalBySelector(t *testing.T) {
	require.Equal(t, 12, TotalBySelector(map[string]int{"CGCEL": 5, "CGPISL": 7}, SelectorAll))
	require.Equal(t, 0, TotalBySelector(map[string]int{"CGCEL": 5}, "CGPISL"))
	require.Equal(t, 5, TotalBySelector(map[string]int{"CGCEL": 5}, "CGCEL"))
	require.Equal(t, 0, TotalBySelector(nil, SelectorAll))
}

func TestSelectCategories(t *testing.T) {
	byCompany := map[string][]CategoryCount{
		"CGPISL": {{Category: "PUMPS", Count: 1}, {Category: "FANS", Count: 1}},
		"CGCEL":  {{Category: "FANS", Count: 2}},
	}
	require.Equal(t, []CategoryCount{{Category: "FANS", Count: 3}, {Category: "PUMPS", Count: 1}}, SelectCategories(byCompany, SelectorAll))
	require.Equal(t, []CategoryCount{{Category: "PUMPS", Count: 1}, {Category: "FANS", Count: 1}}, SelectCategories(byCompany, "CGPISL"))
	require.Empty(t, SelectCategories(byCompany, "OTHER"))
}

func TestConcatAndMergeStatus(t *testing.T) {
	byCompany := map[string][]DivisionStatus{
		"CGCEL":  {{Division: "FANS", Y: 1, N: 2}},
		"CGPISL": {{Division: "FANS", Y: 3, N: 0}, {Division: "PUMPS", N: 4}},
	}
	rows := ConcatByCompany(byCompany, SelectorAll)
	require.Len(t, rows, 3)
	require.Equal(t, []DivisionStatus{{Division: "FANS", Y: 4, N: 2}, {Division: "PUMPS", N: 4}}, MergeStatusByDivision(rows))
	require.Equal(t, []DivisionStatus{{Division: "FANS", Y: 1, N: 2}}, ConcatByCompany(byCompany, "CGCEL"))
}

func TestShapeUsesSelectorEverywhere(t *testing.T) {
	data := sampleData()
	snap := Shape(data, "CGCEL")
	require.Equal(t, StockMeta{TotalStock: 10, TotalGodown: 2, TotalIssuedInAdvance: 1, TotalUnderProcess: 0}, snap.StockMeta)
	require.Equal(t, 3, snap.ComplaintStats[0].Value)

	all := Shape(data, SelectorAll)
	require.Equal(t, 14, all.StockMeta.TotalStock)
	require.Equal(t, "CRM Open Complaints", all.ComplaintStats[0].Title)
	require.Equal(t, 5, all.ComplaintStats[0].Value)
	require.Equal(t, []CategoryCount{{Category: "FANS", Count: 7}, {Category: "PUMPS", Count: 2}}, all.StockDivisions)
}

func sampleData() Data {
	return Data{
		Stock: StockData{
			InStock:         PerCompany{"CGCEL": 10, "CGPISL": 4},
			InGodown:        PerCompany{"CGCEL": 2},
			IssuedInAdvance: PerCompany{"CGCEL": 1},
			UnderProcess:    PerCompany{},
			DivisionWiseDonut: map[string][]CategoryCount{
				"CGCEL":  {{Category: "FANS", Count: 6}},
				"CGPISL": {{Category: "FANS", Count: 1}, {Category: "PUMPS", Count: 2}},
			},
		},
		GRC: GRCData{DivisionWiseDonut: map[string][]CategoryCount{"CGCEL": {{Category: "FANS", Count: 3}}}},
		Complaint: ComplaintData{
			CRMOpen:      PerCompany{"CGCEL": 3, "CGPISL": 2},
			HighPriority: PerCompany{"CGPISL": 1},
		},
	}
}
