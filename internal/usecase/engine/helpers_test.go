package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

// tolerance for values that went through a rounded division
var tolerance = decimal.New(1, -9)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, dayOfMonth int) *time.Time {
	t := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
	return &t
}

func assertDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func assertDecimalNear(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	diff := d(expected).Sub(actual).Abs()
	assert.True(t, diff.LessThanOrEqual(tolerance), "expected %s, got %s (diff %s)", expected, actual.String(), diff.String())
}

// threeMonths builds April..June 2024 with a deposit and a withdrawal in the middle
func threeMonths() []domain.MonthlyRecord {
	return []domain.MonthlyRecord{
		{Year: 2024, Month: domain.April, PercentageGrowth: d("2")},
		{
			Year: 2024, Month: domain.May, PercentageGrowth: d("1.5"),
			DepositAmount: d("500"), DepositDate: day(2024, time.May, 10),
		},
		{
			Year: 2024, Month: domain.June, PercentageGrowth: d("-0.5"),
			WithdrawalAmount: d("250"), WithdrawalDate: day(2024, time.June, 20),
		},
	}
}
