// Package auth issues and verifies the bearer tokens accepted by the gRPC server
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/policy"
)

// Issuer signs and verifies HMAC-SHA256 tokens
type Issuer struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. expiry is the lifetime of issued tokens.
func NewIssuer(secret, issuer string, expiry time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

// Issue creates a signed token for p
func (i *Issuer) Issue(p policy.Principal) (string, error) {
	if p.Subject == "" {
		return "", domain.NewValidationError("subject", "must not be empty")
	}
	now := i.now()
	claims := jwt.MapClaims{
		"sub":  p.Subject,
		"role": string(p.Role),
		"iss":  i.issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(i.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates tokenString and returns the principal it names.
// Every failure wraps domain.ErrUnauthenticated.
func (i *Issuer) Parse(tokenString string) (policy.Principal, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return policy.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return policy.Principal{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}
	roleClaim, _ := claims["role"].(string)
	role, err := policy.ParseRole(roleClaim)
	if err != nil {
		return policy.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	return policy.Principal{Subject: sub, Role: role}, nil
}
