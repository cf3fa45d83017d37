// Package policy decides which caller may read or change which ledger.
package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
)

// Role is the access level carried by an authenticated caller
type Role string

const (
	// RoleInvestor may only read the accounts it owns
	RoleInvestor Role = "investor"
	// RoleAdmin may read and change every account
	RoleAdmin Role = "admin"
)

// ParseRole parses a role name
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleInvestor:
		return RoleInvestor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", domain.NewValidationError("role", "unknown role %q", s)
}

// Principal is the authenticated caller of a request
type Principal struct {
	Subject string
	Role    Role
}

func (p Principal) String() string {
	return fmt.Sprintf("%s(%s)", p.Subject, p.Role)
}

type principalKey struct{}

// WithPrincipal returns a context carrying p
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// CanView reports whether p may read account
func CanView(p Principal, account *domain.Account) bool {
	if p.Role == RoleAdmin {
		return true
	}
	return p.Role == RoleInvestor && p.Subject != "" && account.InvestorID == p.Subject
}

// CanMutate reports whether p may change ledgers
func CanMutate(p Principal) bool {
	return p.Role == RoleAdmin
}
