// Package cli holds the ledgerctl subcommands: offline recompute and summary of
// a TOML ledger file, and minting development tokens for the gRPC server.
package cli

import (
	"os"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

// LedgerFile is the on-disk TOML form of one account.
// Amounts are decimal strings, dates are YYYY-MM-DD.
type LedgerFile struct {
	InvestorID        string       `toml:"investor_id"`
	Currency          string       `toml:"currency"`
	InitialInvestment string       `toml:"initial_investment"`
	MonthlyReturnRate string       `toml:"monthly_return_rate"`
	MonthlyAdditions  string       `toml:"monthly_additions"`
	Records           []RecordLine `toml:"records"`
}

// RecordLine is one [[records]] table
type RecordLine struct {
	Month            string `toml:"month"`
	Year             int    `toml:"year"`
	PercentageGrowth string `toml:"percentage_growth"`
	DepositAmount    string `toml:"deposit_amount"`
	DepositDate      string `toml:"deposit_date"`
	WithdrawalAmount string `toml:"withdrawal_amount"`
	WithdrawalDate   string `toml:"withdrawal_date"`
}

// ReadLedgerFile decodes the ledger file at path
func ReadLedgerFile(path string) (*LedgerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read ledger file")
	}
	var lf LedgerFile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &lf, nil
}

// currency returns the configured ISO code, USD when none is set or the code is unknown
func (lf *LedgerFile) currency() string {
	if lf.Currency != "" && money.GetCurrency(lf.Currency) != nil {
		return lf.Currency
	}
	return money.USD
}

// Account converts the file into a domain account
func (lf *LedgerFile) Account() (*domain.Account, error) {
	initial, err := optionalDecimal("initial_investment", lf.InitialInvestment)
	if err != nil {
		return nil, err
	}
	rate, err := optionalDecimal("monthly_return_rate", lf.MonthlyReturnRate)
	if err != nil {
		return nil, err
	}
	additions, err := optionalDecimal("monthly_additions", lf.MonthlyAdditions)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:                uuid.New(),
		InvestorID:        lf.InvestorID,
		InitialInvestment: initial,
		MonthlyReturnRate: rate,
		MonthlyAdditions:  additions,
		Records:           make([]domain.MonthlyRecord, 0, len(lf.Records)),
	}
	if account.InvestorID == "" {
		account.InvestorID = "local"
	}

	for i, line := range lf.Records {
		r, err := line.record()
		if err != nil {
			return nil, errors.Wrapf(err, "records[%d]", i)
		}
		account.Records = append(account.Records, r)
	}

	return account, nil
}

func (l RecordLine) record() (domain.MonthlyRecord, error) {
	month, err := domain.ParseMonth(l.Month)
	if err != nil {
		return domain.MonthlyRecord{}, err
	}
	r := domain.MonthlyRecord{Month: month, Year: l.Year}

	if r.PercentageGrowth, err = optionalDecimal("percentage_growth", l.PercentageGrowth); err != nil {
		return r, err
	}
	if r.DepositAmount, err = optionalDecimal("deposit_amount", l.DepositAmount); err != nil {
		return r, err
	}
	if r.WithdrawalAmount, err = optionalDecimal("withdrawal_amount", l.WithdrawalAmount); err != nil {
		return r, err
	}
	if r.DepositDate, err = optionalDate("deposit_date", l.DepositDate); err != nil {
		return r, err
	}
	if r.WithdrawalDate, err = optionalDate("withdrawal_date", l.WithdrawalDate); err != nil {
		return r, err
	}
	return r, nil
}

func optionalDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, "not a decimal: %q", s)
	}
	return d, nil
}

func optionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil, domain.NewValidationError(field, "expected YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}

// formatMoney renders d in the currency's display format, rounded to its minor unit
func formatMoney(d decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}
