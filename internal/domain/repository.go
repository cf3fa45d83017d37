package domain

import (
	"context"

	"github.com/google/uuid"
)

// LedgerRepository defines the interface for ledger document persistence.
// One document per account; writes are compare-and-set on Account.Version.
type LedgerRepository interface {
	// Create stores a new ledger document with Version 1
	Create(ctx context.Context, account *Account) error

	// Load retrieves the full ledger document for an account.
	// Returns ErrAccountNotFound when no document exists.
	Load(ctx context.Context, id uuid.UUID) (*Account, error)

	// Save replaces the stored document if its version still equals account.Version.
	// On success account.Version is incremented to the stored version.
	// Returns ErrWriteConflict when another writer saved first.
	Save(ctx context.Context, account *Account) error

	// List retrieves ledger documents, filtered by investor when investorID is not empty
	List(ctx context.Context, investorID string) ([]*Account, error)
}
