package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents one investor ledger document in the domain layer.
// It is loaded and saved as a whole; Version guards concurrent writers.
type Account struct {
	ID                uuid.UUID       `json:"id"`
	InvestorID        string          `json:"investorId"`
	InitialInvestment decimal.Decimal `json:"initialInvestment"`
	MonthlyReturnRate decimal.Decimal `json:"monthlyReturnRate"` // fraction, e.g. 0.02; projection only
	MonthlyAdditions  decimal.Decimal `json:"monthlyAdditions"`  // projection only
	Records           []MonthlyRecord `json:"records"`

	// Derived, must equal the recomputed values
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	TotalDeposits    decimal.Decimal `json:"totalDeposits"`
	TotalWithdrawals decimal.Decimal `json:"totalWithdrawals"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate ensures the account configuration adheres to domain rules
func (a *Account) Validate() error {
	if a.InvestorID == "" {
		return NewValidationError("investorId", "must not be empty")
	}
	if a.InitialInvestment.IsNegative() {
		return NewValidationError("initialInvestment", "must not be negative")
	}
	if a.MonthlyAdditions.IsNegative() {
		return NewValidationError("monthlyAdditions", "must not be negative")
	}
	// A rate of -100% or below would drive every projected balance to zero or negative
	if a.MonthlyReturnRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return NewValidationError("monthlyReturnRate", "must be greater than -1")
	}
	return nil
}

// FindRecord returns the index of the record for period, or -1
func (a *Account) FindRecord(period Period) int {
	for i := range a.Records {
		if a.Records[i].Period() == period {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can edit without touching the loaded value
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Records = make([]MonthlyRecord, len(a.Records))
	copy(c.Records, a.Records)
	for i := range c.Records {
		if d := c.Records[i].DepositDate; d != nil {
			v := *d
			c.Records[i].DepositDate = &v
		}
		if d := c.Records[i].WithdrawalDate; d != nil {
			v := *d
			c.Records[i].WithdrawalDate = &v
		}
	}
	return &c
}

// errNilAccount is returned by repositories handed a nil account
var errNilAccount = errors.New("account must not be nil")

// CheckPersistable verifies an account can be handed to a repository
func CheckPersistable(a *Account) error {
	if a == nil {
		return errNilAccount
	}
	if a.ID == uuid.Nil {
		return NewValidationError("id", "must be set before persisting")
	}
	return nil
}
