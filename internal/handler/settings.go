package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/auth"
	"github.com/sakif/promptmaster/internal/service"
)

// SettingsHandler serves the application settings endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
	logger   *slog.Logger
}

func NewSettingsHandler(settings *service.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// HandleGet returns the public settings.
//
// HTTP: GET /api/settings (no auth — the login screen checks whether the
// register button should show)
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// HandleUpdate replaces the settings.
//
// HTTP: PUT /api/settings (bearer, admin)
func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var in service.Settings
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.settings.Update(r.Context(), principal, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
