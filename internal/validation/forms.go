package validation

import (
	"regexp"
	"unicode/utf8"
)

// Movement types accepted by the stock update screen.
const (
	MovementSpareIn  = "SPARE IN"
	MovementSpareOut = "SPARE OUT"
)

// ActionFinalize is the GRC return action that requires dispatch details.
const ActionFinalize = "Finalize"

var (
	phonePattern  = regexp.MustCompile(`^\d{10}$`)
	emailPattern  = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	aadharPattern = regexp.MustCompile(`^[0-9]{12}$`)
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// EmployeeForm is the employee creation form as submitted.
type EmployeeForm struct {
	Name        string `json:"name"`
	DOB         string `json:"dob"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	Aadhar      string `json:"aadhar"`
	PAN         string `json:"pan"`
	JoiningDate string `json:"joining_date"`
	Role        string `json:"role"`
}

// StockUpdateForm is the stock movement form. Qty and OwnQty are kept as the
// raw input text.
type StockUpdateForm struct {
	SpareCode        string `json:"spare_code"`
	Division         string `json:"division"`
	SpareDescription string `json:"spare_description"`
	Qty              string `json:"qty"`
	OwnQty           string `json:"own_qty"`
	MovementType     string `json:"movement_type"`
	Remark           string `json:"remark"`
}

// IndentForm is the stock indent creation form.
type IndentForm struct {
	SpareCode   string `json:"spare_code"`
	IndentQty   string `json:"indent_qty"`
	PartyName   string `json:"party_name"`
	OrderNumber string `json:"order_number"`
	OrderDate   string `json:"order_date"`
	Remark      string `json:"remark"`
}

// GRCReturnForm carries the dispatch header of a GRC return.
type GRCReturnForm struct {
	ActionType   string `json:"action_type"`
	SentThrough  string `json:"sent_through"`
	DocketNumber string `json:"docket_number"`
}

// ValidateEmployeeCreate checks the employee creation form.
func ValidateEmployeeCreate(form EmployeeForm) Result {
	res := newResult()

	if blank(form.Name) || utf8.RuneCountInString(form.Name) < 3 {
		res.add("Enter your full name", "name")
	}
	if blank(form.DOB) {
		res.add("Date of birth is required", "dob")
	}
	if !phonePattern.MatchString(form.PhoneNumber) {
		res.add("Invalid contact number", "phone_number")
	}
	if blank(form.Address) || utf8.RuneCountInString(form.Address) < 5 {
		res.add("Enter a valid address", "address")
	}
	if form.Email != "" && !emailPattern.MatchString(form.Email) {
		res.add("Invalid email address", "email")
	}
	if form.Aadhar != "" && !aadharPattern.MatchString(form.Aadhar) {
		res.add("Aadhar must be 12 digits", "aadhar")
	}
	if form.PAN != "" && !panPattern.MatchString(form.PAN) {
		res.add("Invalid PAN format", "pan")
	}
	if blank(form.JoiningDate) {
		res.add("Joining date is required", "joining_date")
	}
	if !blank(form.JoiningDate) && !blank(form.DOB) {
		joined, okJoined := parseDate(form.JoiningDate)
		born, okBorn := parseDate(form.DOB)
		// unparseable dates compare false, same as an invalid Date
		if okJoined && okBorn && joined.Before(born) {
			res.add("Invalid joining date", "joining_date")
		}
	}
	if blank(form.Role) {
		res.add("Role is required", "role")
	}
	return res
}

// ValidateStockUpdate checks the stock movement form. The quantity is
// checked twice under different messages; both may be reported.
func ValidateStockUpdate(form StockUpdateForm) Result {
	res := newResult()

	if blank(form.SpareCode) {
		res.add("Spare Code is required", "spare_code")
	}
	if blank(form.Division) {
		res.add("Division is required", "division")
	}
	if blank(form.SpareDescription) {
		res.add("Spare Description is required", "spare_description")
	}
	if !positiveQty(form.Qty) {
		res.add("Enter required quantity", "qty")
	}
	if blank(form.MovementType) {
		res.add("Movement Type is required", "movement_type")
	}
	if blank(form.Qty) {
		res.add("Quantity is required", "qty")
	}
	// NaN on either side never compares greater
	if form.MovementType == MovementSpareOut && number(form.Qty) > number(form.OwnQty) {
		res.add("Check stock availability", "qty")
	}
	if blank(form.Remark) {
		res.add("Remark is required", "remark")
	}
	return res
}

// ValidateIndentCreate checks the indent creation form.
func ValidateIndentCreate(form IndentForm) Result {
	res := newResult()

	if blank(form.SpareCode) {
		res.add("Spare Code is required", "spare_code")
	}
	if !positiveQty(form.IndentQty) {
		res.add("Enter required quantity", "indent_qty")
	}
	if blank(form.PartyName) {
		res.add("Ordered For is required", "party_name")
	}
	if blank(form.OrderNumber) {
		res.add("Order Number is required", "order_number")
	}
	if blank(form.OrderDate) {
		res.add("Order Date is required", "order_date")
	}
	if blank(form.Remark) {
		res.add("Remark is required", "remark")
	}
	return res
}

// ValidateGRCReturn checks the dispatch header. Only the Finalize action is
// constrained.
func ValidateGRCReturn(form GRCReturnForm) Result {
	res := newResult()
	if form.ActionType != ActionFinalize {
		return res
	}
	if blank(form.SentThrough) {
		res.add("Returned Through is required", "sent_through")
	}
	if blank(form.DocketNumber) {
		res.add("Consignment No. is required", "docket_number")
	}
	return res
}
