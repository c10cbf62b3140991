package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/auth"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/service"
)

// PromptHandler serves the prompt CRUD and favorite endpoints.
type PromptHandler struct {
	prompts *service.PromptService
	logger  *slog.Logger
}

func NewPromptHandler(prompts *service.PromptService, logger *slog.Logger) *PromptHandler {
	return &PromptHandler{prompts: prompts, logger: logger}
}

// HandleList returns the requester's own prompts plus all public ones,
// favorite-annotated, newest-updated first.
//
// HTTP: GET /api/prompts (bearer)
func (h *PromptHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	prompts, err := h.prompts.List(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	if prompts == nil {
		prompts = []model.Prompt{} // [] over null in JSON
	}

	writeJSON(w, http.StatusOK, prompts)
}

// HandleListPublic is the unauthenticated community listing.
//
// HTTP: GET /api/prompts/public
func (h *PromptHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.prompts.ListPublic(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if prompts == nil {
		prompts = []model.Prompt{}
	}

	writeJSON(w, http.StatusOK, prompts)
}

// HandleCreate stores a new prompt owned by the requester.
//
// HTTP: POST /api/prompts (bearer)
func (h *PromptHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var in service.CreatePromptInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}

	prompt, err := h.prompts.Create(r.Context(), principal, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, prompt)
}

// HandleUpdate applies a partial update. Fields absent from the body stay
// untouched.
//
// HTTP: PUT /api/prompts/{id} (bearer, owner or admin)
func (h *PromptHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "prompt id is required"))
		return
	}

	var in service.UpdatePromptInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}

	prompt, err := h.prompts.Update(r.Context(), principal, id, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prompt)
}

// HandleDelete removes a prompt.
//
// HTTP: DELETE /api/prompts/{id} (bearer, owner or admin)
func (h *PromptHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "prompt id is required"))
		return
	}

	if err := h.prompts.Delete(r.Context(), principal, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleFavorite flips the requester's favorite on a prompt.
//
// HTTP: POST /api/prompts/{id}/favorite (bearer) → {"isFavorite": bool}
func (h *PromptHandler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "prompt id is required"))
		return
	}

	isFavorite, err := h.prompts.ToggleFavorite(r.Context(), principal, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": isFavorite})
}
