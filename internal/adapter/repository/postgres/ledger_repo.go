package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

// ledgerRepository implements domain.LedgerRepository.
// The whole record set lives in one JSONB column so a mutation is a single
// compare-and-set UPDATE guarded by the version column.
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// uniqueViolation is the SQLSTATE for a duplicate primary key
const uniqueViolation = "23505"

const selectAccount = `
	SELECT id, investor_id, initial_investment, monthly_return_rate, monthly_additions,
	       current_balance, total_deposits, total_withdrawals, records, version, created_at, updated_at
	FROM ledger_accounts
`

// Create inserts a new account at version 1
func (r *ledgerRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := domain.CheckPersistable(account); err != nil {
		return err
	}

	records, err := marshalRecords(account.Records)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ledger_accounts (id, investor_id, initial_investment, monthly_return_rate, monthly_additions,
			current_balance, total_deposits, total_withdrawals, records, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		account.ID,
		account.InvestorID,
		account.InitialInvestment.String(),
		account.MonthlyReturnRate.String(),
		account.MonthlyAdditions.String(),
		account.CurrentBalance.String(),
		account.TotalDeposits.String(),
		account.TotalWithdrawals.String(),
		records,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return errors.Wrapf(domain.ErrAccountExists, "account %s", account.ID)
		}
		return errors.Wrap(err, "failed to create ledger account")
	}

	account.Version = 1
	return nil
}

// Load retrieves an account with its full record set
func (r *ledgerRepository) Load(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, selectAccount+` WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(domain.ErrAccountNotFound, "account %s", id)
		}
		return nil, errors.Wrap(err, "failed to load ledger account")
	}
	return account, nil
}

// Save replaces the stored account if its version still matches account.Version,
// then advances account.Version
func (r *ledgerRepository) Save(ctx context.Context, account *domain.Account) error {
	if err := domain.CheckPersistable(account); err != nil {
		return err
	}

	records, err := marshalRecords(account.Records)
	if err != nil {
		return err
	}

	query := `
		UPDATE ledger_accounts
		SET investor_id = $3, initial_investment = $4, monthly_return_rate = $5, monthly_additions = $6,
			current_balance = $7, total_deposits = $8, total_withdrawals = $9, records = $10,
			updated_at = $11, version = version + 1
		WHERE id = $1 AND version = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Version,
		account.InvestorID,
		account.InitialInvestment.String(),
		account.MonthlyReturnRate.String(),
		account.MonthlyAdditions.String(),
		account.CurrentBalance.String(),
		account.TotalDeposits.String(),
		account.TotalWithdrawals.String(),
		records,
		account.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save ledger account")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		// Either someone else saved first or the account is gone
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ledger_accounts WHERE id = $1)`, account.ID).Scan(&exists); err != nil {
			return errors.Wrap(err, "failed to check account existence")
		}
		if !exists {
			return errors.Wrapf(domain.ErrAccountNotFound, "account %s", account.ID)
		}
		return errors.Wrapf(domain.ErrWriteConflict, "account %s at version %d", account.ID, account.Version)
	}

	account.Version++
	return nil
}

// List returns every account, or only those of investorID when it is not empty
func (r *ledgerRepository) List(ctx context.Context, investorID string) ([]*domain.Account, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if investorID == "" {
		rows, err = r.db.QueryContext(ctx, selectAccount+` ORDER BY created_at, id`)
	} else {
		rows, err = r.db.QueryContext(ctx, selectAccount+` WHERE investor_id = $1 ORDER BY created_at, id`, investorID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ledger accounts")
	}
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan ledger account")
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating ledger accounts")
	}

	return accounts, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(s scanner) (*domain.Account, error) {
	var account domain.Account
	var initialStr, rateStr, additionsStr, balanceStr, depositsStr, withdrawalsStr string
	var records []byte

	err := s.Scan(
		&account.ID,
		&account.InvestorID,
		&initialStr,
		&rateStr,
		&additionsStr,
		&balanceStr,
		&depositsStr,
		&withdrawalsStr,
		&records,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse NUMERIC columns
	for _, f := range []struct {
		name string
		src  string
		dst  *decimal.Decimal
	}{
		{"initial_investment", initialStr, &account.InitialInvestment},
		{"monthly_return_rate", rateStr, &account.MonthlyReturnRate},
		{"monthly_additions", additionsStr, &account.MonthlyAdditions},
		{"current_balance", balanceStr, &account.CurrentBalance},
		{"total_deposits", depositsStr, &account.TotalDeposits},
		{"total_withdrawals", withdrawalsStr, &account.TotalWithdrawals},
	} {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", f.name)
		}
		*f.dst = d
	}

	account.Records = []domain.MonthlyRecord{}
	if err := json.Unmarshal(records, &account.Records); err != nil {
		return nil, errors.Wrap(err, "failed to decode records")
	}

	account.CreatedAt = account.CreatedAt.UTC()
	account.UpdatedAt = account.UpdatedAt.UTC()
	return &account, nil
}

func marshalRecords(records []domain.MonthlyRecord) ([]byte, error) {
	if records == nil {
		records = []domain.MonthlyRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode records")
	}
	return b, nil
}
