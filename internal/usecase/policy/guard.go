package policy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/ledger"
)

// Ledger is the set of ledger operations a Guard protects
type Ledger interface {
	CreateAccount(ctx context.Context, input ledger.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListAccounts(ctx context.Context, investorID string) ([]*domain.Account, error)
	UpsertRecord(ctx context.Context, id uuid.UUID, input ledger.RecordInput) (*domain.Account, error)
	DeleteRecord(ctx context.Context, id uuid.UUID, period domain.Period) (*domain.Account, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, input ledger.SettingsInput) (*domain.Account, error)
	GetSummary(ctx context.Context, id uuid.UUID, horizon int) (*domain.Summary, error)
}

// Guard checks the request principal before delegating to the ledger service.
// Investors get read-only access to their own accounts; admins get everything.
type Guard struct {
	next   Ledger
	logger zerolog.Logger
}

// NewGuard creates a Guard in front of next
func NewGuard(next Ledger, logger zerolog.Logger) *Guard {
	return &Guard{next: next, logger: logger}
}

func (g *Guard) principal(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

func (g *Guard) requireAdmin(ctx context.Context, op string) error {
	p, err := g.principal(ctx)
	if err != nil {
		return err
	}
	if !CanMutate(p) {
		g.logger.Warn().Str("principal", p.String()).Str("operation", op).Msg("mutation denied")
		return fmt.Errorf("%w: %s may not %s", domain.ErrForbidden, p.Role, op)
	}
	return nil
}

// CreateAccount opens a new ledger (admin only)
func (g *Guard) CreateAccount(ctx context.Context, input ledger.CreateAccountInput) (*domain.Account, error) {
	if err := g.requireAdmin(ctx, "create accounts"); err != nil {
		return nil, err
	}
	return g.next.CreateAccount(ctx, input)
}

// GetAccount returns the account when the principal may view it.
// An account the caller does not own is reported as forbidden.
func (g *Guard) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	p, err := g.principal(ctx)
	if err != nil {
		return nil, err
	}
	account, err := g.next.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(p, account) {
		return nil, fmt.Errorf("%w: account %s", domain.ErrForbidden, id)
	}
	return account, nil
}

// ListAccounts lists accounts. Investors only ever see their own,
// whatever investorID filter they ask for.
func (g *Guard) ListAccounts(ctx context.Context, investorID string) ([]*domain.Account, error) {
	p, err := g.principal(ctx)
	if err != nil {
		return nil, err
	}
	switch p.Role {
	case RoleAdmin:
		return g.next.ListAccounts(ctx, investorID)
	case RoleInvestor:
		if investorID != "" && investorID != p.Subject {
			return nil, fmt.Errorf("%w: accounts of %s", domain.ErrForbidden, investorID)
		}
		return g.next.ListAccounts(ctx, p.Subject)
	}
	return nil, domain.ErrForbidden
}

// UpsertRecord adds or replaces a monthly record (admin only)
func (g *Guard) UpsertRecord(ctx context.Context, id uuid.UUID, input ledger.RecordInput) (*domain.Account, error) {
	if err := g.requireAdmin(ctx, "edit records"); err != nil {
		return nil, err
	}
	return g.next.UpsertRecord(ctx, id, input)
}

// DeleteRecord removes a monthly record (admin only)
func (g *Guard) DeleteRecord(ctx context.Context, id uuid.UUID, period domain.Period) (*domain.Account, error) {
	if err := g.requireAdmin(ctx, "delete records"); err != nil {
		return nil, err
	}
	return g.next.DeleteRecord(ctx, id, period)
}

// UpdateSettings changes projection settings (admin only)
func (g *Guard) UpdateSettings(ctx context.Context, id uuid.UUID, input ledger.SettingsInput) (*domain.Account, error) {
	if err := g.requireAdmin(ctx, "change settings"); err != nil {
		return nil, err
	}
	return g.next.UpdateSettings(ctx, id, input)
}

// GetSummary returns the summary of an account the principal may view
func (g *Guard) GetSummary(ctx context.Context, id uuid.UUID, horizon int) (*domain.Summary, error) {
	if _, err := g.GetAccount(ctx, id); err != nil {
		return nil, err
	}
	return g.next.GetSummary(ctx, id, horizon)
}
