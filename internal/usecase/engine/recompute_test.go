package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

func TestRecompute_SingleDepositScenario(t *testing.T) {
	// 10000 invested; one 30-day month at 2% with 1000 deposited on day 15
	records := []domain.MonthlyRecord{
		{
			Year: 2024, Month: domain.June, PercentageGrowth: d("2"),
			DepositAmount: d("1000"), DepositDate: day(2024, time.June, 15),
		},
	}

	out, err := Recompute(d("10000"), records)
	require.NoError(t, err)
	require.Len(t, out, 1)

	r := out[0]
	assertDecimalEqual(t, "10000", r.StartingBalance)
	assertDecimalEqual(t, "200", r.GrowthAmount)
	assertDecimalNear(t, "10.666666666666666667", r.DepositGrowth)
	assert.True(t, r.WithdrawalGrowth.IsZero())
	assertDecimalNear(t, "11210.666666666666666667", r.EndingBalance)
}

func TestRecompute_ChainingAndBalanceEquation(t *testing.T) {
	out, err := Recompute(d("10000"), threeMonths())
	require.NoError(t, err)
	require.Len(t, out, 3)

	assertDecimalEqual(t, "10000", out[0].StartingBalance)
	for i, r := range out {
		if i > 0 {
			assert.True(t, r.StartingBalance.Equal(out[i-1].EndingBalance), "record %d does not chain", i)
		}

		expected := r.StartingBalance.
			Add(r.GrowthAmount).
			Add(r.DepositAmount).
			Add(r.DepositGrowth).
			Sub(r.WithdrawalAmount).
			Sub(r.WithdrawalGrowth)
		assert.True(t, expected.Equal(r.EndingBalance), "record %d balance equation: %s != %s", i, expected, r.EndingBalance)
	}

	// April: 10000 * 2%
	assertDecimalEqual(t, "10200", out[0].EndingBalance)
	// May: 10200 * 1.5% = 153; deposit 500 on day 10 of 31 -> 500 * 1.5% * 22/31
	assertDecimalEqual(t, "153", out[1].GrowthAmount)
	assertDecimalNear(t, "5.322580645161290323", out[1].DepositGrowth)
	// June: negative month, withdrawal of 250 on day 20 of 30 -> 250 * -0.5% * 10/30
	assertDecimalNear(t, "-0.416666666666666667", out[2].WithdrawalGrowth)
}

func TestRecompute_Idempotent(t *testing.T) {
	first, err := Recompute(d("10000"), threeMonths())
	require.NoError(t, err)

	second, err := Recompute(d("10000"), first)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].StartingBalance.Equal(second[i].StartingBalance), "record %d starting", i)
		assert.True(t, first[i].GrowthAmount.Equal(second[i].GrowthAmount), "record %d growth", i)
		assert.True(t, first[i].DepositGrowth.Equal(second[i].DepositGrowth), "record %d deposit growth", i)
		assert.True(t, first[i].WithdrawalGrowth.Equal(second[i].WithdrawalGrowth), "record %d withdrawal growth", i)
		assert.True(t, first[i].EndingBalance.Equal(second[i].EndingBalance), "record %d ending", i)
	}
}

func TestRecompute_EditCascade(t *testing.T) {
	before, err := Recompute(d("10000"), threeMonths())
	require.NoError(t, err)

	// Edit the first month's rate on the already-recomputed set
	edited := make([]domain.MonthlyRecord, len(before))
	copy(edited, before)
	edited[0].PercentageGrowth = d("4")

	after, err := Recompute(d("10000"), edited)
	require.NoError(t, err)

	// Every later month moved
	for i := 1; i < len(after); i++ {
		assert.False(t, after[i].StartingBalance.Equal(before[i].StartingBalance), "record %d starting unchanged", i)
		assert.False(t, after[i].EndingBalance.Equal(before[i].EndingBalance), "record %d ending unchanged", i)
	}

	// ...and matches a from-scratch run over fresh input
	fresh := threeMonths()
	fresh[0].PercentageGrowth = d("4")
	scratch, err := Recompute(d("10000"), fresh)
	require.NoError(t, err)
	for i := range scratch {
		assert.True(t, scratch[i].EndingBalance.Equal(after[i].EndingBalance), "record %d differs from scratch run", i)
	}
}

func TestRecompute_DoesNotMutateInput(t *testing.T) {
	records := threeMonths()

	_, err := Recompute(d("10000"), records)
	require.NoError(t, err)

	for i, r := range records {
		assert.True(t, r.StartingBalance.IsZero(), "input record %d was modified", i)
		assert.True(t, r.EndingBalance.IsZero(), "input record %d was modified", i)
	}
}

func TestRecompute_Empty(t *testing.T) {
	out, err := Recompute(d("10000"), nil)

	require.NoError(t, err)
	assert.Empty(t, out)
	assertDecimalEqual(t, "10000", CurrentBalance(d("10000"), out))
}

func TestEngineRebuild_SortsAndDerivesTotals(t *testing.T) {
	records := threeMonths()
	// Store out of order; logical order is re-derived from the period
	records[0], records[2] = records[2], records[0]

	account := &domain.Account{InvestorID: "inv-1", InitialInvestment: d("10000"), Records: records}

	rebuilt, err := New().Rebuild(account)
	require.NoError(t, err)

	assert.Equal(t, domain.April, rebuilt.Records[0].Month)
	assert.Equal(t, domain.June, rebuilt.Records[2].Month)
	assertDecimalEqual(t, "10500", rebuilt.TotalDeposits)
	assertDecimalEqual(t, "250", rebuilt.TotalWithdrawals)
	assert.True(t, rebuilt.CurrentBalance.Equal(rebuilt.Records[2].EndingBalance))

	// Caller's account is untouched
	assert.Equal(t, domain.June, account.Records[0].Month)
	assert.True(t, account.CurrentBalance.IsZero())
}

func TestEngineRebuild_RejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		record domain.MonthlyRecord
		target error
	}{
		{
			name:   "negative deposit",
			record: domain.MonthlyRecord{Year: 2024, Month: domain.June, DepositAmount: d("-1")},
			target: domain.ErrValidation,
		},
		{
			name:   "deposit date outside month",
			record: domain.MonthlyRecord{Year: 2024, Month: domain.June, DepositAmount: d("1"), DepositDate: day(2024, time.July, 1)},
			target: domain.ErrValidation,
		},
		{
			name:   "unknown month",
			record: domain.MonthlyRecord{Year: 2024, Month: "Juno"},
			target: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &domain.Account{InvestorID: "inv-1", InitialInvestment: d("100"), Records: []domain.MonthlyRecord{tt.record}}

			_, err := New().Rebuild(account)

			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestEngineRebuild_DuplicatePeriod(t *testing.T) {
	account := &domain.Account{
		InvestorID:        "inv-1",
		InitialInvestment: d("100"),
		Records: []domain.MonthlyRecord{
			{Year: 2024, Month: domain.June},
			{Year: 2024, Month: domain.June},
		},
	}

	_, err := New().Rebuild(account)

	assert.ErrorIs(t, err, domain.ErrDuplicatePeriod)
}
