package domain

import (
	"github.com/shopspring/decimal"
)

// ProjectionPoint is one forward-looking month of a projection
type ProjectionPoint struct {
	Period  Period
	Balance decimal.Decimal
}

// Summary holds the account-level figures derived from a recomputed ledger.
// It is read-only and never persisted.
type Summary struct {
	CurrentBalance      decimal.Decimal
	TotalDeposits       decimal.Decimal // initial investment plus every deposit
	TotalWithdrawals    decimal.Decimal
	TotalGain           decimal.Decimal // sum of monthly growth amounts
	TotalPercentageGain decimal.Decimal // linear sum of monthly rates, not compounded
	DepositCount        int             // initial investment counts as one
	AverageMonthlyInput decimal.Decimal
	Projection          []ProjectionPoint
}
