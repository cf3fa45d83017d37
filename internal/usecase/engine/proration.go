package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

// DaysInMonth returns the number of calendar days in month of year (leap-year aware)
func DaysInMonth(month domain.Month, year int) (int, error) {
	n := month.Number()
	if n == 0 {
		return 0, domain.NewInvalidPeriod(month)
	}
	// Day 0 of the following month is the last day of this one
	return time.Date(year, time.Month(n)+1, 0, 0, 0, 0, 0, time.UTC).Day(), nil
}

// DepositGrowth calculates the growth a mid-month deposit earns in its first month.
// Logic:
//   - daysRemaining = daysInMonth - day + 1 (money earns from the day it arrives)
//   - a deposit on the last day of the month earns nothing
//   - growth = amount * pct/100 * daysRemaining/daysInMonth
//
// Returns zero when amount, date, month or year is absent.
func DepositGrowth(amount, pct decimal.Decimal, depositDate *time.Time, month domain.Month, year int) (decimal.Decimal, error) {
	if absent(amount, depositDate, month, year) {
		return decimal.Zero, nil
	}

	days, err := DaysInMonth(month, year)
	if err != nil {
		return decimal.Zero, err
	}

	day := depositDate.Day()
	daysRemaining := days - day + 1
	if day == days {
		daysRemaining = 0
	}

	return prorate(amount, pct, daysRemaining, days), nil
}

// WithdrawalGrowthLoss calculates the growth a mid-month withdrawal forfeits.
// Logic:
//   - daysRemaining = daysInMonth - day (money is gone from the day it leaves)
//   - a withdrawal on day 1 forfeits the most, on the last day nothing
//   - loss = amount * pct/100 * daysRemaining/daysInMonth
//
// Returns zero when amount, date, month or year is absent.
func WithdrawalGrowthLoss(amount, pct decimal.Decimal, withdrawalDate *time.Time, month domain.Month, year int) (decimal.Decimal, error) {
	if absent(amount, withdrawalDate, month, year) {
		return decimal.Zero, nil
	}

	days, err := DaysInMonth(month, year)
	if err != nil {
		return decimal.Zero, err
	}

	daysRemaining := days - withdrawalDate.Day()

	return prorate(amount, pct, daysRemaining, days), nil
}

func absent(amount decimal.Decimal, date *time.Time, month domain.Month, year int) bool {
	return amount.IsZero() || date == nil || date.IsZero() || month == "" || year == 0
}

// prorate computes amount * pct/100 * daysRemaining/days with a single division
func prorate(amount, pct decimal.Decimal, daysRemaining, days int) decimal.Decimal {
	if daysRemaining <= 0 {
		return decimal.Zero
	}
	return amount.
		Mul(pct.Shift(-2)).
		Mul(decimal.NewFromInt(int64(daysRemaining))).
		Div(decimal.NewFromInt(int64(days)))
}
