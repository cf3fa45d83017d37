package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestMonthlyRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  MonthlyRecord
		wantErr bool
		field   string
	}{
		{
			name:   "Valid growth only",
			record: MonthlyRecord{Year: 2024, Month: May, PercentageGrowth: decimal.NewFromFloat(-1.25)},
		},
		{
			name: "Valid deposit and withdrawal",
			record: MonthlyRecord{
				Year: 2024, Month: February, PercentageGrowth: decimal.NewFromInt(2),
				DepositAmount: decimal.NewFromInt(100), DepositDate: date(2024, time.February, 29),
				WithdrawalAmount: decimal.NewFromInt(50), WithdrawalDate: date(2024, time.February, 1),
			},
		},
		{
			name:   "Deposit without date is allowed",
			record: MonthlyRecord{Year: 2024, Month: May, DepositAmount: decimal.NewFromInt(100)},
		},
		{
			name:    "Unknown month",
			record:  MonthlyRecord{Year: 2024, Month: "Mayday"},
			wantErr: true,
			field:   "month",
		},
		{
			name:    "Zero year",
			record:  MonthlyRecord{Month: May},
			wantErr: true,
			field:   "year",
		},
		{
			name:    "Negative deposit",
			record:  MonthlyRecord{Year: 2024, Month: May, DepositAmount: decimal.NewFromInt(-1)},
			wantErr: true,
			field:   "depositAmount",
		},
		{
			name:    "Negative withdrawal",
			record:  MonthlyRecord{Year: 2024, Month: May, WithdrawalAmount: decimal.NewFromInt(-1)},
			wantErr: true,
			field:   "withdrawalAmount",
		},
		{
			name:    "Deposit date in another month",
			record:  MonthlyRecord{Year: 2024, Month: May, DepositAmount: decimal.NewFromInt(1), DepositDate: date(2024, time.June, 1)},
			wantErr: true,
			field:   "depositDate",
		},
		{
			name:    "Withdrawal date in another year",
			record:  MonthlyRecord{Year: 2024, Month: May, WithdrawalAmount: decimal.NewFromInt(1), WithdrawalDate: date(2023, time.May, 1)},
			wantErr: true,
			field:   "withdrawalDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestAccountValidate(t *testing.T) {
	valid := Account{InvestorID: "inv-1", InitialInvestment: decimal.NewFromInt(1000), MonthlyReturnRate: decimal.NewFromFloat(0.02)}
	assert.NoError(t, valid.Validate())

	noInvestor := valid
	noInvestor.InvestorID = ""
	assert.ErrorIs(t, noInvestor.Validate(), ErrValidation)

	negative := valid
	negative.InitialInvestment = decimal.NewFromInt(-1)
	assert.ErrorIs(t, negative.Validate(), ErrValidation)

	negativeAdditions := valid
	negativeAdditions.MonthlyAdditions = decimal.NewFromInt(-5)
	assert.ErrorIs(t, negativeAdditions.Validate(), ErrValidation)

	wipeout := valid
	wipeout.MonthlyReturnRate = decimal.NewFromInt(-1)
	assert.ErrorIs(t, wipeout.Validate(), ErrValidation)
}

func TestAccountCloneIsDeep(t *testing.T) {
	original := &Account{
		ID:         uuid.New(),
		InvestorID: "inv-1",
		Records: []MonthlyRecord{
			{Year: 2024, Month: May, DepositAmount: decimal.NewFromInt(1), DepositDate: date(2024, time.May, 3)},
		},
	}

	clone := original.Clone()
	clone.Records[0].Year = 2030
	*clone.Records[0].DepositDate = time.Date(2030, time.May, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 2024, original.Records[0].Year)
	assert.Equal(t, 3, original.Records[0].DepositDate.Day())
	assert.Equal(t, 0, original.FindRecord(Period{Year: 2024, Month: May}))
	assert.Equal(t, -1, original.FindRecord(Period{Year: 2024, Month: June}))
}
