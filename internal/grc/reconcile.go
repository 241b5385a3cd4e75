package grc

// Notice types shown to the operator.
const (
	NoticeError   = "error"
	NoticeWarning = "warning"
	NoticeSuccess = "success"
)

// Notice is the toast-style outcome of a GRC operation.
type Notice struct {
	Message    string `json:"message"`
	Resolution string `json:"resolution,omitempty"`
	Type       string `json:"type"`
}

// ReceiveLine is one spare on a GRC being received at the service center.
type ReceiveLine struct {
	SpareCode     string `json:"spare_code" yaml:"spare_code"`
	GRCNumber     int64  `json:"grc_number" yaml:"grc_number"`
	IssueQty      int    `json:"issue_qty" yaml:"issue_qty"`
	ReceiveQty    int    `json:"receive_qty" yaml:"receive_qty"`
	DamagedQty    int    `json:"damaged_qty" yaml:"damaged_qty"`
	ShortQty      int    `json:"short_qty" yaml:"short_qty"`
	AltSpareQty   int    `json:"alt_spare_qty" yaml:"alt_spare_qty"`
	AltSpareCode  string `json:"alt_spare_code" yaml:"alt_spare_code"`
	DisputeRemark string `json:"dispute_remark" yaml:"dispute_remark"`
}

// Accounted is the quantity the receiver has explained for the line.
func (l ReceiveLine) Accounted() int {
	return l.ReceiveQty + l.DamagedQty + l.ShortQty + l.AltSpareQty
}

// ReturnLine is one spare being returned against a GRC.
type ReturnLine struct {
	SpareCode        string `json:"spare_code" yaml:"spare_code"`
	GRCNumber        int64  `json:"grc_number" yaml:"grc_number"`
	GoodQty          int    `json:"good_qty" yaml:"good_qty"`
	DefectiveQty     int    `json:"defective_qty" yaml:"defective_qty"`
	ActualPendingQty int    `json:"actual_pending_qty" yaml:"actual_pending_qty"`
}

// Returning is the total quantity leaving with this return.
func (l ReturnLine) Returning() int {
	return l.GoodQty + l.DefectiveQty
}

// UpperBoundResult reports return lines that exceed the pending quantity.
type UpperBoundResult struct {
	Valid          bool   `json:"valid" yaml:"valid"`
	Message        string `json:"message,omitempty" yaml:"message,omitempty"`
	FailingIndices []int  `json:"failing_indices" yaml:"failing_indices"`
}

// CheckExactBalance returns the lines whose accounted quantity differs from
// the issued quantity, in input order.
func CheckExactBalance(lines []ReceiveLine) []ReceiveLine {
	var out []ReceiveLine
	for _, l := range lines {
		if l.Accounted() != l.IssueQty {
			out = append(out, l)
		}
	}
	return out
}

// CheckAltSpareDetails returns the lines that declare an alternate spare
// without naming it or giving a dispute remark.
func CheckAltSpareDetails(lines []ReceiveLine) []ReceiveLine {
	var out []ReceiveLine
	for _, l := range lines {
		if l.AltSpareQty > 0 && (l.AltSpareCode == "" || l.DisputeRemark == "") {
			out = append(out, l)
		}
	}
	return out
}

// ValidateReceive runs the receive checks and stops at the first failing one.
// A nil notice means the lines may be saved.
func ValidateReceive(lines []ReceiveLine) *Notice {
	if len(lines) == 0 {
		return &Notice{
			Message:    "No records to update.",
			Resolution: "Please fetch GRC details first.",
			Type:       NoticeWarning,
		}
	}
	if bad := CheckExactBalance(lines); len(bad) > 0 {
		return &Notice{
			Message:    "Quantity mismatch for " + bad[0].SpareCode,
			Resolution: "Review spare quantities.",
			Type:       NoticeError,
		}
	}
	if bad := CheckAltSpareDetails(lines); len(bad) > 0 {
		return &Notice{
			Message:    "Details missing for : " + bad[0].SpareCode,
			Resolution: "Enter Alt. Spare Code and Dispute Remark.",
			Type:       NoticeError,
		}
	}
	return nil
}

// CheckUpperBound collects every line whose good and defective quantities
// together exceed what is still pending.
func CheckUpperBound(lines []ReturnLine) UpperBoundResult {
	failing := []int{}
	for i, l := range lines {
		if l.Returning() > l.ActualPendingQty {
			failing = append(failing, i)
		}
	}
	if len(failing) > 0 {
		return UpperBoundResult{Valid: false, Message: "Quantity mismatch.", FailingIndices: failing}
	}
	return UpperBoundResult{Valid: true, FailingIndices: failing}
}
