package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/servicedesk/servicedesk/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// ResolveCompany picks the company a login acts under. Only admins may
// switch company or select ALL.
func ResolveCompany(user *User, requested string) (string, error) {
	if requested == "" || requested == user.Company {
		return user.Company, nil
	}
	if user.Role != shared.RoleAdmin {
		return "", shared.ErrUnknownCompany
	}
	if !shared.ValidCompanySelector(requested) {
		return "", shared.ErrUnknownCompany
	}
	return requested, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
