package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/auth"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/service"
)

// UserHandler serves the admin user-management endpoints. The admin role
// itself is enforced by middleware AND re-checked in the service — the
// handler only translates HTTP.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns every account.
//
// HTTP: GET /api/users (bearer, admin)
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	users, err := h.users.List(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleCreate adds an account with the default password; the new user must
// change it on first login.
//
// HTTP: POST /api/users (bearer, admin)
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var in service.CreateUserInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Create(r.Context(), principal, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleDelete removes an account; its prompts pass to the deleting admin.
//
// HTTP: DELETE /api/users/{id} (bearer, admin, not self)
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "user id is required"))
		return
	}

	if err := h.users.Delete(r.Context(), principal, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
