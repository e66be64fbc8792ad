// Package auth issues and verifies HS256 session tokens and carries the
// caller identity through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin grants access to the admin surface
const RoleAdmin = "ADMIN"

var (
	// ErrInvalidToken indicates a token that failed parsing or verification
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSecret indicates a manager built without a signing secret
	ErrMissingSecret = errors.New("jwt secret is required")
)

// Identity is the authenticated caller. A zero Identity is anonymous.
type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Anonymous reports whether no user is attached
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// DisplayName is the name shown next to the caller's comments
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.UserID
}

// Claims are the JWT claims carried by a session token
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with a shared secret
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewManager creates a token manager. A zero ttl issues non-expiring tokens.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "content-share",
		now:    time.Now,
	}, nil
}

// GenerateToken signs a token for the identity
func (m *Manager) GenerateToken(id Identity) (string, error) {
	if id.UserID == "" {
		return "", fmt.Errorf("user id is required")
	}

	now := m.now()
	claims := Claims{
		Name: id.Name,
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id.UserID,
			Issuer:   m.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns its identity
func (m *Manager) ParseToken(tokenStr string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity stored in ctx, or an anonymous one
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}
