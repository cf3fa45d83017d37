// Package engine holds the pure ledger computations: chronological sorting,
// day-of-month proration, the full-history recompute and account aggregation.
// Nothing here performs I/O or keeps state between calls.
package engine

import (
	"time"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

// Engine is the single entry point the service layer depends on
type Engine struct{}

// New creates a new Engine instance
func New() *Engine {
	return &Engine{}
}

// Rebuild validates, sorts and recomputes every record of account and refreshes
// the derived account totals. The input account is not modified.
func (e *Engine) Rebuild(account *domain.Account) (*domain.Account, error) {
	for i := range account.Records {
		if err := account.Records[i].Validate(); err != nil {
			return nil, err
		}
	}

	sorted, err := SortRecords(account.Records)
	if err != nil {
		return nil, err
	}

	records, err := Recompute(account.InitialInvestment, sorted)
	if err != nil {
		return nil, err
	}

	rebuilt := account.Clone()
	rebuilt.Records = records
	rebuilt.TotalDeposits, rebuilt.TotalWithdrawals = Totals(account.InitialInvestment, records)
	rebuilt.CurrentBalance = CurrentBalance(account.InitialInvestment, records)

	return rebuilt, nil
}

// Summarize derives the read-only summary and a horizon-month projection
func (e *Engine) Summarize(account *domain.Account, horizon int, now time.Time) *domain.Summary {
	return Aggregate(account, horizon, now)
}
