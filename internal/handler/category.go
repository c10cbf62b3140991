package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/auth"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/service"
)

// CategoryHandler serves category listing, creation, and deletion.
type CategoryHandler struct {
	categories *service.CategoryService
	logger     *slog.Logger
}

func NewCategoryHandler(categories *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// HandleList returns all categories, system before user.
//
// HTTP: GET /api/categories (no auth — the sidebar needs them pre-login)
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	writeJSON(w, http.StatusOK, categories)
}

// HandleCreate adds a user category owned by the requester.
//
// HTTP: POST /api/categories (bearer)
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var in service.CreateCategoryInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}

	category, err := h.categories.Create(r.Context(), principal, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// HandleDelete removes a category; its prompts move to the fallback.
//
// HTTP: DELETE /api/categories/{id} (bearer, admin)
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "category id is required"))
		return
	}

	if err := h.categories.Delete(r.Context(), principal, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
