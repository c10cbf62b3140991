package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/auth"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/policy"
	"github.com/sakif/promptmaster/internal/repository"
)

// DefaultUserPassword is assigned to admin-created accounts. The account is
// flagged first-login, so the owner must replace it on their first session.
const DefaultUserPassword = "123456"

// UserService handles admin user management.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{users: users, passwords: passwords, logger: logger}
}

// List returns every account. Admin only.
func (s *UserService) List(ctx context.Context, p model.Principal) ([]model.User, error) {
	if !policy.Allows(p, policy.CapManageUsers) {
		return nil, apperror.Forbidden("only admins can list users")
	}
	return s.users.ListUsers(ctx)
}

type CreateUserInput struct {
	Name string     `json:"name"`
	Role model.Role `json:"role"`
}

// Create adds an account with the default password and the first-login flag
// set — the new user must pick their own password on first session.
func (s *UserService) Create(ctx context.Context, p model.Principal, in CreateUserInput) (*model.User, error) {
	if !policy.Allows(p, policy.CapManageUsers) {
		return nil, apperror.Forbidden("only admins can create users")
	}

	name := strings.TrimSpace(in.Name)
	if len(name) < MinUserNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be at least %d characters", MinUserNameLength))
	}

	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	// The guest is a synthetic principal, never an account.
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("unknown role %q", role))
	}

	hash, err := s.passwords.Hash(DefaultUserPassword)
	if err != nil {
		return nil, fmt.Errorf("service: hashing default password: %w", err)
	}

	user := &model.User{
		ID:           xid.New().String(),
		Name:         name,
		Avatar:       avatarFor(name),
		Role:         role,
		PasswordHash: hash,
		IsFirstLogin: true,
		CreatedAt:    time.Now().UnixMilli(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "userID", user.ID, "name", name, "role", role, "by", p.ID)
	return user, nil
}

// Delete removes an account. The victim's prompts are reassigned to the
// deleting admin (owner and author name both), their favorites dropped —
// all in one transaction. Self-deletion is rejected: the system must never
// lose its last admin to a stray click.
func (s *UserService) Delete(ctx context.Context, p model.Principal, id string) error {
	if !policy.Allows(p, policy.CapManageUsers) {
		return apperror.Forbidden("only admins can delete users")
	}
	if id == p.ID {
		return apperror.Forbidden("you cannot delete your own account")
	}

	if err := s.users.DeleteUser(ctx, id, p.ID, p.Name); err != nil {
		return err
	}

	s.logger.Info("user deleted", "userID", id, "by", p.ID)
	return nil
}
