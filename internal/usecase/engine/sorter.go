package engine

import (
	"sort"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

// SortRecords returns a copy of records ordered by year, then calendar month.
// Two records for the same period fail with a *domain.DuplicatePeriodError;
// an unknown month fails with domain.ErrInvalidPeriod.
func SortRecords(records []domain.MonthlyRecord) ([]domain.MonthlyRecord, error) {
	for _, r := range records {
		if !r.Month.Valid() {
			return nil, domain.NewInvalidPeriod(r.Month)
		}
	}

	// Create a copy of records to avoid mutating the caller's slice
	sorted := make([]domain.MonthlyRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Period().Before(sorted[j].Period())
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Period() == sorted[i-1].Period() {
			return nil, &domain.DuplicatePeriodError{Period: sorted[i].Period()}
		}
	}

	return sorted, nil
}
