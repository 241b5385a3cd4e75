// Package complaints lists pending service complaints and narrows them with
// the counter's filter form.
package complaints

import (
	"net/url"
	"strconv"
	"strings"
)

// PendingComplaint is one open complaint as shown on the pending page.
type PendingComplaint struct {
	ID                int64  `json:"id"`
	ComplaintNumber   string `json:"complaint_number"`
	Company           string `json:"company"`
	Division          string `json:"division"`
	ComplaintType     string `json:"complaint_type"`
	ComplaintPriority string `json:"complaint_priority"`
	ActionHead        string `json:"action_head"`
	ActionBy          string `json:"action_by"`
	SparePending      string `json:"spare_pending"`
	FinalStatus       string `json:"final_status"`
	Date              string `json:"date"`
	CustomerName      string `json:"customer_name"`
	PhoneNumber       string `json:"phone_number"`
	Status            string `json:"status"`
	Remark            string `json:"remark"`
}

// Criteria holds the pending-page filters. Empty fields do not constrain.
type Criteria struct {
	Division          string `json:"division"`
	ComplaintType     string `json:"complaint_type"`
	ComplaintPriority string `json:"complaint_priority"`
	ActionHead        string `json:"action_head"`
	SparePending      string `json:"spare_pending"`
	FinalStatus       string `json:"final_status"`
	ActionBy          string `json:"action_by"`
	Date              string `json:"date"`
	CustomerSearch    string `json:"customer_search"`
	ComplaintNumber   string `json:"complaint_number"`
}

// CriteriaFromQuery reads Criteria from URL query parameters.
func CriteriaFromQuery(q url.Values) Criteria {
	return Criteria{
		Division:          q.Get("division"),
		ComplaintType:     q.Get("complaint_type"),
		ComplaintPriority: q.Get("complaint_priority"),
		ActionHead:        q.Get("action_head"),
		SparePending:      q.Get("spare_pending"),
		FinalStatus:       q.Get("final_status"),
		ActionBy:          q.Get("action_by"),
		Date:              q.Get("date"),
		CustomerSearch:    q.Get("customer_search"),
		ComplaintNumber:   q.Get("complaint_number"),
	}
}

// IsZero reports whether no filter is set.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// FilterRecords returns the records matching every non-empty criterion, in
// input order. The input slice is not modified.
func FilterRecords(records []PendingComplaint, c Criteria) []PendingComplaint {
	out := make([]PendingComplaint, 0, len(records))
	for _, rec := range records {
		if c.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches reports whether rec satisfies c.
func (c Criteria) Matches(rec PendingComplaint) bool {
	exact := []struct{ want, got string }{
		{c.Division, rec.Division},
		{c.ComplaintType, rec.ComplaintType},
		{c.ComplaintPriority, rec.ComplaintPriority},
		{c.ActionHead, rec.ActionHead},
		{c.SparePending, rec.SparePending},
		{c.FinalStatus, rec.FinalStatus},
		{c.ActionBy, rec.ActionBy},
		{c.Date, rec.Date},
	}
	for _, f := range exact {
		if f.want != "" && f.want != f.got {
			return false
		}
	}
	if c.CustomerSearch != "" {
		name := strings.Contains(strings.ToLower(rec.CustomerName), strings.ToLower(c.CustomerSearch))
		if !name && !strings.Contains(rec.PhoneNumber, c.CustomerSearch) {
			return false
		}
	}
	if c.ComplaintNumber != "" && !strings.Contains(strconv.FormatInt(rec.ID, 10), c.ComplaintNumber) {
		return false
	}
	return true
}
