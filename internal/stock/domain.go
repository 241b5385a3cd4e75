// Package stock keeps spare stock per company, division and spare code, the
// SPARE IN / SPARE OUT movements that change it, and indents raised against it.
package stock

import (
	"errors"
	"fmt"
	"time"

	"github.com/servicedesk/servicedesk/internal/validation"
)

// MovementType is SPARE IN or SPARE OUT.
type MovementType string

const (
	MovementIn  MovementType = validation.MovementSpareIn
	MovementOut MovementType = validation.MovementSpareOut
)

// Line is the stock held for one spare in one division.
type Line struct {
	Company          string    `json:"company"`
	Division         string    `json:"division"`
	SpareCode        string    `json:"spare_code"`
	SpareDescription string    `json:"spare_description"`
	OwnQty           int       `json:"own_qty"`
	GodownQty        int       `json:"godown_qty"`
	AdvanceQty       int       `json:"advance_qty"`
	UnderProcessQty  int       `json:"under_process_qty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Movement records one posted stock change.
type Movement struct {
	ID           string       `json:"id"`
	Company      string       `json:"company"`
	Division     string       `json:"division"`
	SpareCode    string       `json:"spare_code"`
	Type         MovementType `json:"movement_type"`
	Qty          int          `json:"qty"`
	BalanceAfter int          `json:"balance_after"`
	Remark       string       `json:"remark"`
	ActorID      int64        `json:"actor_id"`
	PostedAt     time.Time    `json:"posted_at"`
}

// Indent is a request to procure a spare.
type Indent struct {
	IndentNumber string    `json:"indent_number"`
	Company      string    `json:"company"`
	SpareCode    string    `json:"spare_code"`
	Qty          int       `json:"indent_qty"`
	PartyName    string    `json:"party_name"`
	OrderNumber  string    `json:"order_number"`
	OrderDate    time.Time `json:"order_date"`
	Remark       string    `json:"remark"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Card is a spare's stock across divisions with its latest movements.
type Card struct {
	SpareCode string     `json:"spare_code"`
	Lines     []Line     `json:"lines"`
	Movements []Movement `json:"movements"`
}

var (
	// ErrLineNotFound indicates no stock line exists for the spare.
	ErrLineNotFound = errors.New("stock line not found")
	// ErrInsufficientStock is returned when SPARE OUT would go below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidMovement indicates an unknown movement type.
	ErrInvalidMovement = errors.New("stock: invalid movement type")
	// ErrInvalidQuantity indicates a quantity that is not a whole number.
	ErrInvalidQuantity = errors.New("stock: quantity must be a whole number")
)

// FormError carries form rule failures.
type FormError struct {
	Result validation.Result
}

func (e *FormError) Error() string {
	return fmt.Sprintf("stock: form invalid: %v", e.Result.Errors)
}
