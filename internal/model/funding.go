package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Funding holds the savings plan persisted with a trip. Every field is
// optional: trips saved without a plan leave them nil.
type Funding struct {
	MonthlyPerPerson *decimal.Decimal
	MonthlyTotal     *decimal.Decimal
	Months           *int
	Date             *time.Time
}

// Planned reports whether a savings plan was saved.
func (f Funding) Planned() bool {
	return f.MonthlyPerPerson != nil || f.MonthlyTotal != nil
}
