package rbac

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Service resolves effective permissions.
type Service struct {
	roles  RoleSource
	scopes RoleScopes
}

// NewService constructs a Service. A nil scopes table uses DefaultRoleScopes.
func NewService(roles RoleSource, scopes RoleScopes) *Service {
	if scopes == nil {
		scopes = DefaultRoleScopes()
	}
	return &Service{roles: roles, scopes: scopes}
}

// ScopesForRole lists the permissions of a role. Unknown roles grant nothing.
func (s *Service) ScopesForRole(role string) []string {
	scopes := s.scopes[strings.ToUpper(strings.TrimSpace(role))]
	out := make([]string, len(scopes))
	copy(out, scopes)
	return out
}

// EffectivePermissions returns the permissions granted to a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	if s.roles == nil {
		return nil, errors.New("rbac: role source not configured")
	}
	role, err := s.roles.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ScopesForRole(role), nil
}

// PGRoleSource reads roles from the users table.
type PGRoleSource struct {
	pool *pgxpool.Pool
}

// NewPGRoleSource constructs PGRoleSource.
func NewPGRoleSource(pool *pgxpool.Pool) *PGRoleSource {
	return &PGRoleSource{pool: pool}
}

// RoleOf returns the role of an active user.
func (p *PGRoleSource) RoleOf(ctx context.Context, userID int64) (string, error) {
	var role string
	err := p.pool.QueryRow(ctx, `SELECT role FROM users WHERE id=$1 AND is_active=TRUE`, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return role, err
}
