// Package bolt stores ledger documents in a single-file bbolt database.
// It backs the server when no PostgreSQL instance is configured.
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	bbolt "go.etcd.io/bbolt"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

var accountsBucket = []byte("ledger_accounts")

// Store implements domain.LedgerRepository on top of bbolt.
// bbolt serializes writers, so the version check and the write happen in one transaction.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database file at path
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bolt database %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(accountsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create accounts bucket")
	}

	return &Store{db: db}, nil
}

// Close closes the database file
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new account at version 1
func (s *Store) Create(ctx context.Context, account *domain.Account) error {
	if err := domain.CheckPersistable(account); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := account.Clone()
	stored.Version = 1

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(accountsBucket)
		key := account.ID[:]
		if b.Get(key) != nil {
			return errors.Wrapf(domain.ErrAccountExists, "account %s", account.ID)
		}
		return put(b, stored)
	})
	if err != nil {
		return errors.Wrap(err, "failed to create ledger account")
	}

	account.Version = 1
	return nil
}

// Load retrieves an account with its full record set
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var account *domain.Account
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(accountsBucket).Get(id[:])
		if v == nil {
			return errors.Wrapf(domain.ErrAccountNotFound, "account %s", id)
		}
		var err error
		account, err = decode(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Save replaces the stored account if its version still matches account.Version,
// then advances account.Version
func (s *Store) Save(ctx context.Context, account *domain.Account) error {
	if err := domain.CheckPersistable(account); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	next := account.Clone()
	next.Version = account.Version + 1

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(accountsBucket)
		v := b.Get(account.ID[:])
		if v == nil {
			return errors.Wrapf(domain.ErrAccountNotFound, "account %s", account.ID)
		}
		current, err := decode(v)
		if err != nil {
			return err
		}
		if current.Version != account.Version {
			return errors.Wrapf(domain.ErrWriteConflict, "account %s at version %d, stored %d", account.ID, account.Version, current.Version)
		}
		return put(b, next)
	})
	if err != nil {
		return err
	}

	account.Version = next.Version
	return nil
}

// List returns every account, or only those of investorID when it is not empty
func (s *Store) List(ctx context.Context, investorID string) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accounts := []*domain.Account{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(accountsBucket).ForEach(func(_, v []byte) error {
			account, err := decode(v)
			if err != nil {
				return err
			}
			if investorID == "" || account.InvestorID == investorID {
				accounts = append(accounts, account)
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ledger accounts")
	}

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return bytes.Compare(accounts[i].ID[:], accounts[j].ID[:]) < 0
	})
	return accounts, nil
}

func put(b *bbolt.Bucket, account *domain.Account) error {
	v, err := json.Marshal(account)
	if err != nil {
		return errors.Wrap(err, "failed to encode account")
	}
	return b.Put(account.ID[:], v)
}

// decode copies out of v, which bbolt only keeps valid for the transaction
func decode(v []byte) (*domain.Account, error) {
	var account domain.Account
	if err := json.Unmarshal(v, &account); err != nil {
		return nil, errors.Wrap(err, "failed to decode account")
	}
	if account.Records == nil {
		account.Records = []domain.MonthlyRecord{}
	}
	return &account, nil
}
