// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository INTERFACES, not the concrete sqlite type — tests
// substitute in-memory mocks, and handlers never see SQL.
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
	"github.com/sakif/promptmaster/internal/repository"
)

const (
	MinUserNameLength = 3
	MinPasswordLength = 4
)

// Session is what a successful authentication returns: the account and a
// fresh bearer token for it.
type Session struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// AuthService handles login, registration, and password changes.
type AuthService struct {
	users     repository.UserRepository
	settings  repository.SettingsRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	settings repository.SettingsRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		settings:  settings,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Login authenticates by display name (case-insensitive) and password.
//
// GENERIC REJECTION:
// Whether the name is unknown or the password is wrong, the caller gets the
// same "invalid credentials" error. Distinguishing the two would let an
// attacker enumerate which display names exist.
func (s *AuthService) Login(ctx context.Context, name, password string) (*Session, error) {
	if name == "" || password == "" {
		return nil, apperror.ValidationFailed("username", "username and password are required")
	}

	user, err := s.users.GetUserByName(ctx, name)
	if err != nil {
		s.logger.Info("login rejected", "name", name, "reason", "unknown user")
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", "name", name, "reason", "bad password")
		return nil, apperror.Unauthorized("invalid credentials")
	}

	user.LastLoginAt = time.Now().UnixMilli()
	if err := s.users.TouchLastLogin(ctx, user.ID, user.LastLoginAt); err != nil {
		// Logged, not fatal — a failed timestamp write must not block login.
		s.logger.Error("failed to record last login", "userID", user.ID, "error", err)
	}

	token, err := s.tokens.Generate(model.PrincipalOf(*user))
	if err != nil {
		return nil, fmt.Errorf("service: issuing token: %w", err)
	}

	s.logger.Info("user logged in", "userID", user.ID, "role", user.Role)
	return &Session{User: *user, Token: token}, nil
}

// Register creates a self-service account — only when an admin has opened
// registration in settings.
func (s *AuthService) Register(ctx context.Context, name, password string) (*Session, error) {
	allowed, err := s.settings.AllowRegistration(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: reading registration setting: %w", err)
	}
	if !allowed {
		return nil, apperror.Forbidden("registration is currently closed")
	}

	name = strings.TrimSpace(name)
	if len(name) < MinUserNameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at least %d characters", MinUserNameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service: hashing password: %w", err)
	}

	now := time.Now().UnixMilli()
	user := &model.User{
		ID:           xid.New().String(),
		Name:         name,
		Avatar:       avatarFor(name),
		Role:         model.RoleUser,
		PasswordHash: hash,
		// Self-registered users chose their own password — no forced change.
		IsFirstLogin: false,
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(model.PrincipalOf(*user))
	if err != nil {
		return nil, fmt.Errorf("service: issuing token: %w", err)
	}

	s.logger.Info("user registered", "userID", user.ID, "name", user.Name)
	return &Session{User: *user, Token: token}, nil
}

// ChangePassword sets a new password for the authenticated principal,
// clears the first-login flag, and re-issues the session token.
//
// The caller already proved who they are by presenting a valid bearer token
// (first-login accounts log in with the admin-assigned default password),
// so no current-password check is required.
func (s *AuthService) ChangePassword(ctx context.Context, p model.Principal, newPassword string) (*Session, error) {
	if p.IsGuest() {
		return nil, apperror.Forbidden("guests have no password to change")
	}
	if len(newPassword) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("service: hashing password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, p.ID, hash); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(model.PrincipalOf(*user))
	if err != nil {
		return nil, fmt.Errorf("service: issuing token: %w", err)
	}

	s.logger.Info("password changed", "userID", user.ID)
	return &Session{User: *user, Token: token}, nil
}

// Me resolves the authenticated principal back to the full account record.
func (s *AuthService) Me(ctx context.Context, p model.Principal) (*model.User, error) {
	if p.IsGuest() {
		guest := model.GuestUser()
		return &guest, nil
	}
	return s.users.GetUserByID(ctx, p.ID)
}

// avatarFor derives the two-letter display label from a name.
func avatarFor(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) == 0 {
		return "?"
	}
	if len(runes) == 1 {
		return strings.ToUpper(string(runes[0]))
	}
	return strings.ToUpper(string(runes[:2]))
}
