package rbac

import (
	"context"

	"github.com/servicedesk/servicedesk/internal/shared"
)

// RoleSource resolves the role a user holds.
type RoleSource interface {
	RoleOf(ctx context.Context, userID int64) (string, error)
}

// RoleScopes maps a role to the permissions it grants.
type RoleScopes map[string][]string

// DefaultRoleScopes is the built-in role table.
func DefaultRoleScopes() RoleScopes {
	return RoleScopes{
		shared.RoleAdmin: shared.AllScopes(),
		shared.RoleUser:  shared.UserScopes(),
	}
}
