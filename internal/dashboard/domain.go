package dashboard

import "time"

// PerCompany maps a company code to a count.
type PerCompany map[string]int

// Data is the raw dashboard feed, broken down per company.
type Data struct {
	Stock       StockData     `json:"stock"`
	GRC         GRCData       `json:"grc"`
	Complaint   ComplaintData `json:"complaint"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// StockData holds stock totals and the division donut.
type StockData struct {
	InStock           PerCompany                 `json:"number_of_items_in_stock"`
	InGodown          PerCompany                 `json:"number_of_items_in_godown"`
	IssuedInAdvance   PerCompany                 `json:"number_of_items_issued_in_advance"`
	UnderProcess      PerCompany                 `json:"number_of_items_under_process"`
	DivisionWiseDonut map[string][]CategoryCount `json:"division_wise_donut"`
}

// GRCData holds open GRC lines per division.
type GRCData struct {
	DivisionWiseDonut map[string][]CategoryCount `json:"division_wise_donut"`
}

// ComplaintData holds complaint counters and breakdowns.
type ComplaintData struct {
	CRMOpen            PerCompany                  `json:"crm_open_complaints"`
	CRMEscalation      PerCompany                  `json:"crm_escalation_complaints"`
	MDEscalation       PerCompany                  `json:"md_escalation_complaints"`
	HighPriority       PerCompany                  `json:"high_priority_complaints"`
	SparePending       PerCompany                  `json:"spare_pending_complaints"`
	DivisionWiseStatus map[string][]DivisionStatus `json:"division_wise_status"`
	ComplaintType      map[string][]CategoryCount  `json:"complaint_type"`
}

// Stat is a titled counter card.
type Stat struct {
	Title string `json:"title"`
	Value int    `json:"value"`
}

// StockMeta carries the stock totals shown beside the donut.
type StockMeta struct {
	TotalStock           int `json:"total_stock"`
	TotalGodown          int `json:"total_godown"`
	TotalIssuedInAdvance int `json:"total_issued_in_advance"`
	TotalUnderProcess    int `json:"total_under_process"`
}

// Snapshot is the dashboard shaped for one company selector.
type Snapshot struct {
	Company         string           `json:"company"`
	StockMeta       StockMeta        `json:"stock_meta"`
	StockDivisions  []CategoryCount  `json:"stock_divisions"`
	GRCDivisions    []CategoryCount  `json:"grc_divisions"`
	ComplaintStats  []Stat           `json:"complaint_stats"`
	ComplaintStatus []DivisionStatus `json:"complaint_status"`
	ComplaintTypes  []CategoryCount  `json:"complaint_types"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Shape projects the raw feed onto one company selector.
func Shape(data Data, selector string) Snapshot {
	total := func(v PerCompany) int { return TotalBySelector(v, selector) }
	c := data.Complaint
	return Snapshot{
		Company: selector,
		StockMeta: StockMeta{
			TotalStock:           total(data.Stock.InStock),
			TotalGodown:          total(data.Stock.InGodown),
			TotalIssuedInAdvance: total(data.Stock.IssuedInAdvance),
			TotalUnderProcess:    total(data.Stock.UnderProcess),
		},
		StockDivisions: SelectCategories(data.Stock.DivisionWiseDonut, selector),
		GRCDivisions:   SelectCategories(data.GRC.DivisionWiseDonut, selector),
		ComplaintStats: []Stat{
			{Title: "CRM Open Complaints", Value: total(c.CRMOpen)},
			{Title: "CRM Escalation Complaints", Value: total(c.CRMEscalation)},
			{Title: "MD Escalation Complaints", Value: total(c.MDEscalation)},
			{Title: "High Priority Complaints", Value: total(c.HighPriority)},
			{Title: "Spare Pending Complaints", Value: total(c.SparePending)},
		},
		ComplaintStatus: MergeStatusByDivision(ConcatByCompany(c.DivisionWiseStatus, selector)),
		ComplaintTypes:  SelectCategories(c.ComplaintType, selector),
		GeneratedAt:     data.GeneratedAt,
	}
}
