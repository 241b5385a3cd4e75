// Package employees registers service desk staff.
package employees

import (
	"errors"
	"fmt"
	"time"

	"github.com/servicedesk/servicedesk/internal/validation"
)

// Employee is a registered staff member.
type Employee struct {
	ID          int64      `json:"id"`
	Company     string     `json:"company"`
	Name        string     `json:"name"`
	DOB         time.Time  `json:"dob"`
	PhoneNumber string     `json:"phone_number"`
	Address     string     `json:"address"`
	Email       string     `json:"email,omitempty"`
	Aadhar      string     `json:"aadhar,omitempty"`
	PAN         string     `json:"pan,omitempty"`
	JoiningDate time.Time  `json:"joining_date"`
	Role        string     `json:"role"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	LeftOn      *time.Time `json:"left_on,omitempty"`
}

// ErrDuplicatePhone is returned when the phone number is already registered.
var ErrDuplicatePhone = errors.New("employee phone number already registered")

// FormError carries employee form failures.
type FormError struct {
	Result validation.Result
}

func (e *FormError) Error() string {
	return fmt.Sprintf("employees: form invalid: %v", e.Result.Errors)
}
