package service

import (
	"context"
	"log/slog"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/policy"
	"github.com/sakif/promptmaster/internal/repository"
)

// Settings is the public application configuration. Readable by anyone —
// the login screen needs allowRegistration before any authentication.
type Settings struct {
	AllowRegistration bool `json:"allowRegistration"`
}

// SettingsService reads and writes application settings.
type SettingsService struct {
	settings repository.SettingsRepository
	logger   *slog.Logger
}

func NewSettingsService(settings repository.SettingsRepository, logger *slog.Logger) *SettingsService {
	return &SettingsService{settings: settings, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	allowed, err := s.settings.AllowRegistration(ctx)
	if err != nil {
		return nil, err
	}
	return &Settings{AllowRegistration: allowed}, nil
}

// Update replaces the settings. Admin only.
func (s *SettingsService) Update(ctx context.Context, p model.Principal, in Settings) (*Settings, error) {
	if !policy.Allows(p, policy.CapManageSettings) {
		return nil, apperror.Forbidden("only admins can change settings")
	}

	if err := s.settings.SetAllowRegistration(ctx, in.AllowRegistration); err != nil {
		return nil, err
	}

	s.logger.Info("settings updated", "allowRegistration", in.AllowRegistration, "by", p.ID)
	return &Settings{AllowRegistration: in.AllowRegistration}, nil
}
