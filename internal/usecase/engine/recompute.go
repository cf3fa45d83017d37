package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

// Recompute derives every record's balances from initialInvestment forward.
// records must already be in chronological order (see SortRecords).
// Logic, per record:
//  1. startingBalance = running balance (initialInvestment for the first record)
//  2. growthAmount = startingBalance * percentageGrowth/100
//  3. depositGrowth and withdrawalGrowth are prorated by day of month
//  4. endingBalance = start + growth + deposit + depositGrowth - withdrawal - withdrawalGrowth
//  5. the ending balance becomes the next record's running balance
//
// The input slice is not modified; a new slice is returned.
func Recompute(initialInvestment decimal.Decimal, records []domain.MonthlyRecord) ([]domain.MonthlyRecord, error) {
	out := make([]domain.MonthlyRecord, len(records))
	copy(out, records)

	running := initialInvestment
	for i := range out {
		r := &out[i]

		depositGrowth, err := DepositGrowth(r.DepositAmount, r.PercentageGrowth, r.DepositDate, r.Month, r.Year)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.Period(), err)
		}
		withdrawalGrowth, err := WithdrawalGrowthLoss(r.WithdrawalAmount, r.PercentageGrowth, r.WithdrawalDate, r.Month, r.Year)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.Period(), err)
		}

		r.StartingBalance = running
		r.GrowthAmount = running.Mul(r.PercentageGrowth.Shift(-2))
		r.DepositGrowth = depositGrowth
		r.WithdrawalGrowth = withdrawalGrowth
		r.EndingBalance = r.StartingBalance.
			Add(r.GrowthAmount).
			Add(r.DepositAmount).
			Add(r.DepositGrowth).
			Sub(r.WithdrawalAmount).
			Sub(r.WithdrawalGrowth)

		running = r.EndingBalance
	}

	return out, nil
}

// Totals returns the deposit and withdrawal totals for a record set.
// The initial investment counts as a deposit.
func Totals(initialInvestment decimal.Decimal, records []domain.MonthlyRecord) (deposits, withdrawals decimal.Decimal) {
	deposits = initialInvestment
	withdrawals = decimal.Zero
	for _, r := range records {
		deposits = deposits.Add(r.DepositAmount)
		withdrawals = withdrawals.Add(r.WithdrawalAmount)
	}
	return deposits, withdrawals
}

// CurrentBalance returns the last record's ending balance, or initialInvestment with no records
func CurrentBalance(initialInvestment decimal.Decimal, records []domain.MonthlyRecord) decimal.Decimal {
	if len(records) == 0 {
		return initialInvestment
	}
	return records[len(records)-1].EndingBalance
}
