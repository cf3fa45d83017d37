package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

func TestSortRecords_OrdersByYearThenMonth(t *testing.T) {
	records := []domain.MonthlyRecord{
		{Year: 2024, Month: domain.March},
		{Year: 2023, Month: domain.December},
		{Year: 2024, Month: domain.January},
		{Year: 2023, Month: domain.February},
		{Year: 2024, Month: domain.October},
	}

	sorted, err := SortRecords(records)
	require.NoError(t, err)

	expected := []domain.Period{
		{Year: 2023, Month: domain.February},
		{Year: 2023, Month: domain.December},
		{Year: 2024, Month: domain.January},
		{Year: 2024, Month: domain.March},
		{Year: 2024, Month: domain.October},
	}
	require.Len(t, sorted, len(expected))
	for i, p := range expected {
		assert.Equal(t, p, sorted[i].Period(), "position %d", i)
	}

	// Input order must be left untouched
	assert.Equal(t, domain.March, records[0].Month)
	assert.Equal(t, 2023, records[1].Year)
}

func TestSortRecords_DuplicatePeriod(t *testing.T) {
	records := []domain.MonthlyRecord{
		{Year: 2024, Month: domain.May, PercentageGrowth: d("1")},
		{Year: 2024, Month: domain.April},
		{Year: 2024, Month: domain.May, PercentageGrowth: d("2")},
	}

	sorted, err := SortRecords(records)

	assert.Nil(t, sorted)
	require.ErrorIs(t, err, domain.ErrDuplicatePeriod)

	var dupErr *domain.DuplicatePeriodError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, domain.Period{Year: 2024, Month: domain.May}, dupErr.Period)
}

func TestSortRecords_InvalidMonth(t *testing.T) {
	records := []domain.MonthlyRecord{
		{Year: 2024, Month: domain.May},
		{Year: 2024, Month: "Maybe"},
	}

	_, err := SortRecords(records)

	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestSortRecords_Empty(t *testing.T) {
	sorted, err := SortRecords(nil)

	require.NoError(t, err)
	assert.Empty(t, sorted)
}
