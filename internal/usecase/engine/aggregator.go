package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

// DefaultProjectionMonths is the projection horizon used when none is requested
const DefaultProjectionMonths = 5

// MaxProjectionMonths bounds the projection horizon a caller may request
const MaxProjectionMonths = 120

// Aggregate derives the account-level summary from a recomputed account.
// records are expected in chronological order with derived fields filled in.
// now anchors the projection calendar when the ledger has no history.
func Aggregate(account *domain.Account, horizon int, now time.Time) *domain.Summary {
	if horizon <= 0 {
		horizon = DefaultProjectionMonths
	}

	deposits, withdrawals := Totals(account.InitialInvestment, account.Records)

	totalGain := decimal.Zero
	totalPct := decimal.Zero
	depositCount := 1 // the initial investment
	for _, r := range account.Records {
		totalGain = totalGain.Add(r.GrowthAmount)
		// Linear sum of monthly rates, matching the simplified reporting model
		totalPct = totalPct.Add(r.PercentageGrowth)
		if r.DepositAmount.IsPositive() {
			depositCount++
		}
	}

	average := decimal.Zero
	if depositCount > 0 {
		average = deposits.Div(decimal.NewFromInt(int64(depositCount)))
	}

	current := CurrentBalance(account.InitialInvestment, account.Records)

	// Continue the calendar after the last historical month, or after the current month
	last := domain.PeriodOf(now)
	if n := len(account.Records); n > 0 {
		last = account.Records[n-1].Period()
	}

	return &domain.Summary{
		CurrentBalance:      current,
		TotalDeposits:       deposits,
		TotalWithdrawals:    withdrawals,
		TotalGain:           totalGain,
		TotalPercentageGain: totalPct,
		DepositCount:        depositCount,
		AverageMonthlyInput: average,
		Projection:          Project(current, account.MonthlyReturnRate, account.MonthlyAdditions, last, horizon),
	}
}

// Project extrapolates balance forward n months after period `after`.
// Each step applies balance = balance * (1 + rate) + additions, independent of
// the historical per-record rates.
func Project(balance, rate, additions decimal.Decimal, after domain.Period, n int) []domain.ProjectionPoint {
	points := make([]domain.ProjectionPoint, 0, n)
	factor := decimal.NewFromInt(1).Add(rate)
	period := after
	for i := 0; i < n; i++ {
		period = period.Next()
		balance = balance.Mul(factor).Add(additions)
		points = append(points, domain.ProjectionPoint{Period: period, Balance: balance})
	}
	return points
}
