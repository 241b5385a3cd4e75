// Package grc tracks goods receipt and return confirmations: spare lines
// issued to the service center against a GRC number, their receipt, and their
// return to the company under a challan.
package grc

import (
	"errors"
	"fmt"
	"time"

	"github.com/servicedesk/servicedesk/internal/validation"
)

// Line status values.
const (
	StatusOpen   = "N"
	StatusClosed = "Y"
)

// Challan report types.
const (
	ReportGood      = "Good"
	ReportDefective = "Defective"
	ReportAll       = "All"
)

// Line is one spare on a GRC.
type Line struct {
	Company          string     `json:"company"`
	Division         string     `json:"division"`
	SpareCode        string     `json:"spare_code"`
	SpareDescription string     `json:"spare_description"`
	GRCNumber        int64      `json:"grc_number"`
	GRCDate          time.Time  `json:"grc_date"`
	IssueQty         int        `json:"issue_qty"`
	GRCPendingQty    int        `json:"grc_pending_qty"`
	ReceiveQty       int        `json:"receive_qty"`
	DamagedQty       int        `json:"damaged_qty"`
	ShortQty         int        `json:"short_qty"`
	AltSpareQty      int        `json:"alt_spare_qty"`
	AltSpareCode     string     `json:"alt_spare_code"`
	DisputeRemark    string     `json:"dispute_remark"`
	ReceiveDate      *time.Time `json:"receive_date,omitempty"`
	GoodQty          int        `json:"good_qty"`
	DefectiveQty     int        `json:"defective_qty"`
	ReturnedQty      int        `json:"returned_qty"`
	ReturningQty     int        `json:"returning_qty"`
	ActualPendingQty int        `json:"actual_pending_qty"`
	Invoice          string     `json:"invoice"`
	ChallanNumber    string     `json:"challan_number"`
	ChallanDate      *time.Time `json:"challan_date,omitempty"`
	DocketNumber     string     `json:"docket_number"`
	SentThrough      string     `json:"sent_through"`
	ChallanBy        string     `json:"challan_by"`
	Status           string     `json:"status"`
}

// ReceiveLine projects the line for the receive screen.
func (l Line) ReceiveLine() ReceiveLine {
	return ReceiveLine{
		SpareCode:     l.SpareCode,
		GRCNumber:     l.GRCNumber,
		IssueQty:      l.IssueQty,
		ReceiveQty:    l.ReceiveQty,
		DamagedQty:    l.DamagedQty,
		ShortQty:      l.ShortQty,
		AltSpareQty:   l.AltSpareQty,
		AltSpareCode:  l.AltSpareCode,
		DisputeRemark: l.DisputeRemark,
	}
}

// UploadRow is one parsed CSV row.
type UploadRow struct {
	SpareCode        string
	Division         string
	SpareDescription string
	GRCNumber        int64
	GRCDate          time.Time
	IssueQty         int
	GRCPendingQty    int
}

// UploadResult counts the effect of an upload.
type UploadResult struct {
	BatchID  string `json:"batch_id"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
}

// Dispute records a receipt that did not match the issue.
type Dispute struct {
	Company          string
	SpareCode        string
	Division         string
	GRCNumber        int64
	GRCDate          time.Time
	SpareDescription string
	IssueQty         int
	GRCPendingQty    int
	ReceiveQty       int
	DamagedQty       int
	ShortQty         int
	AltSpareQty      int
	AltSpareCode     string
	DisputeRemark    string
}

// ReturnDraft stores in-progress return quantities without dispatching.
type ReturnDraft struct {
	SpareCode    string `json:"spare_code" validate:"required"`
	GRCNumber    int64  `json:"grc_number" validate:"required"`
	GoodQty      int    `json:"good_qty" validate:"gte=0"`
	DefectiveQty int    `json:"defective_qty" validate:"gte=0"`
	Invoice      string `json:"invoice"`
	SentThrough  string `json:"sent_through"`
	DocketNumber string `json:"docket_number"`
}

// FinalizeRow is one line dispatched on a challan.
type FinalizeRow struct {
	SpareCode    string `json:"spare_code" validate:"required"`
	GRCNumber    int64  `json:"grc_number" validate:"required"`
	GoodQty      int    `json:"good_qty" validate:"gte=0"`
	DefectiveQty int    `json:"defective_qty" validate:"gte=0"`
}

// FinalizeRequest dispatches a return under one challan.
type FinalizeRequest struct {
	ActionType    string        `json:"action_type"`
	ChallanNumber string        `json:"challan_number" validate:"required,max=10"`
	Division      string        `json:"division" validate:"required"`
	SentThrough   string        `json:"sent_through"`
	DocketNumber  string        `json:"docket_number"`
	Rows          []FinalizeRow `json:"grc_rows" validate:"required,min=1,dive"`
}

// FinalizeResult summarises a dispatched challan.
type FinalizeResult struct {
	ChallanNumber string `json:"challan_number"`
	Lines         int    `json:"lines"`
	Returned      int    `json:"returned"`
}

// HistoryEntry is an immutable record of a dispatched return line.
type HistoryEntry struct {
	Company          string     `json:"company"`
	Division         string     `json:"division"`
	SpareCode        string     `json:"spare_code"`
	SpareDescription string     `json:"spare_description"`
	GRCNumber        int64      `json:"grc_number"`
	GRCDate          time.Time  `json:"grc_date"`
	IssueQty         int        `json:"issue_qty"`
	GRCPendingQty    int        `json:"grc_pending_qty"`
	GoodQty          int        `json:"good_qty"`
	DefectiveQty     int        `json:"defective_qty"`
	ReturningQty     int        `json:"returning_qty"`
	ChallanNumber    string     `json:"challan_number"`
	ChallanDate      *time.Time `json:"challan_date,omitempty"`
	DocketNumber     string     `json:"docket_number"`
	SentThrough      string     `json:"sent_through"`
	DisputeRemark    string     `json:"dispute_remark"`
	ChallanBy        string     `json:"challan_by"`
}

// EnquiryFilter narrows the enquiry listing. Status N reads open lines,
// anything else reads the return history.
type EnquiryFilter struct {
	Division      string
	SpareCode     string
	From          time.Time
	To            time.Time
	GRCNumber     int64
	ChallanNumber string
	Status        string
	Limit         int
	Offset        int
}

// EnquiryRecord is one enquiry row. Dates are dd-mm-yyyy.
type EnquiryRecord struct {
	SpareCode        string `json:"spare_code"`
	SpareDescription string `json:"spare_description"`
	GRCNumber        int64  `json:"grc_number"`
	GRCDate          string `json:"grc_date"`
	IssueQty         int    `json:"issue_qty"`
	GRCPendingQty    int    `json:"grc_pending_qty"`
	ReturningQty     int    `json:"returning_qty"`
	DisputeRemark    string `json:"dispute_remark"`
	ChallanNumber    string `json:"challan_number"`
	ChallanDate      string `json:"challan_date"`
	DocketNumber     string `json:"docket_number"`
}

// EnquiryPage is one page of enquiry results.
type EnquiryPage struct {
	Records      []EnquiryRecord `json:"records"`
	TotalRecords int             `json:"total_records"`
}

// ChallanItem is a printed challan row.
type ChallanItem struct {
	GRCNumber        int64  `json:"grc_number"`
	GRCDate          string `json:"grc_date"`
	SpareCode        string `json:"spare_code"`
	SpareDescription string `json:"spare_description"`
	ActualPendingQty int    `json:"actual_pending_qty"`
	GoodQty          int    `json:"good_qty"`
	DefectiveQty     int    `json:"defective_qty"`
}

// ChallanDocument is the content of a printed challan.
type ChallanDocument struct {
	ChallanNumber string        `json:"challan_number" validate:"required"`
	Division      string        `json:"division" validate:"required"`
	SentThrough   string        `json:"sent_through"`
	DocketNumber  string        `json:"docket_number"`
	Rows          []ChallanItem `json:"grc_rows" validate:"dive"`
	PreparedBy    string        `json:"-"`
	Date          time.Time     `json:"-"`
}

var (
	// ErrNotFound is returned when a spare line does not exist on the GRC.
	ErrNotFound = errors.New("grc: spare not found")
	// ErrReceiveRejected wraps a receive batch that failed reconciliation.
	ErrReceiveRejected = errors.New("grc: receive rejected")
	// ErrInvalidReportType is returned for an unknown challan layout.
	ErrInvalidReportType = errors.New("grc: invalid report type")
	// ErrEmptyUpload is returned for a CSV without headers.
	ErrEmptyUpload = errors.New("grc: csv file has no headers")
	// ErrDuplicateLine is returned when a batch names the same spare and GRC
	// number more than once.
	ErrDuplicateLine = errors.New("grc: line listed more than once")
)

// ReceiveRejection carries the notice explaining a rejected receive batch.
type ReceiveRejection struct {
	Notice Notice
}

func (e *ReceiveRejection) Error() string {
	return "grc: receive rejected: " + e.Notice.Message
}

func (e *ReceiveRejection) Unwrap() error { return ErrReceiveRejected }

// FormError carries dispatch header failures.
type FormError struct {
	Result validation.Result
}

func (e *FormError) Error() string {
	return fmt.Sprintf("grc: return form invalid: %v", e.Result.Errors)
}

// QuantityError carries the return lines that exceed their pending quantity.
type QuantityError struct {
	Result UpperBoundResult
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("grc: %s rows %v", e.Result.Message, e.Result.FailingIndices)
}

// UploadError reports the first CSV row that could not be read.
type UploadError struct {
	Line      int
	SpareCode string
	Reason    string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("grc: upload line %d (%s): %s", e.Line, e.SpareCode, e.Reason)
}
