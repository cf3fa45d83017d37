package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyRecord represents one month of account performance in the domain layer.
// The JSON names are the persisted field names and must not change.
type MonthlyRecord struct {
	Month            Month           `json:"month"`
	Year             int             `json:"year"`
	PercentageGrowth decimal.Decimal `json:"percentageGrowth"` // e.g. 2 for 2%, may be negative
	DepositAmount    decimal.Decimal `json:"depositAmount"`
	DepositDate      *time.Time      `json:"depositDate,omitempty"` // only the day component is used
	WithdrawalAmount decimal.Decimal `json:"withdrawalAmount"`
	WithdrawalDate   *time.Time      `json:"withdrawalDate,omitempty"`

	// Derived on every write by the recompute engine
	StartingBalance  decimal.Decimal `json:"startingBalance"`
	GrowthAmount     decimal.Decimal `json:"growthAmount"`
	DepositGrowth    decimal.Decimal `json:"depositGrowth"`
	WithdrawalGrowth decimal.Decimal `json:"withdrawalGrowth"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Period returns the (year, month) the record belongs to
func (r *MonthlyRecord) Period() Period {
	return Period{Year: r.Year, Month: r.Month}
}

// Validate ensures the caller-supplied fields adhere to domain rules.
// Derived fields are not checked; they are overwritten on recompute.
func (r *MonthlyRecord) Validate() error {
	if !r.Month.Valid() {
		return NewValidationError("month", "unknown month %q", r.Month)
	}
	if r.Year <= 0 {
		return NewValidationError("year", "must be positive, got %d", r.Year)
	}
	if r.DepositAmount.IsNegative() {
		return NewValidationError("depositAmount", "must not be negative")
	}
	if r.WithdrawalAmount.IsNegative() {
		return NewValidationError("withdrawalAmount", "must not be negative")
	}

	period := r.Period()
	if r.DepositDate != nil && !period.Contains(*r.DepositDate) {
		return NewValidationError("depositDate", "%s is outside %s", r.DepositDate.Format(time.DateOnly), period)
	}
	if r.WithdrawalDate != nil && !period.Contains(*r.WithdrawalDate) {
		return NewValidationError("withdrawalDate", "%s is outside %s", r.WithdrawalDate.Format(time.DateOnly), period)
	}

	return nil
}
