package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/auth"
	"github.com/sakif/promptmaster/internal/optimizer"
	"github.com/sakif/promptmaster/internal/policy"
)

// AIHandler serves the Gemini-backed prompt assistance endpoints.
type AIHandler struct {
	optimizer *optimizer.Optimizer
	logger    *slog.Logger
}

func NewAIHandler(opt *optimizer.Optimizer, logger *slog.Logger) *AIHandler {
	return &AIHandler{optimizer: opt, logger: logger}
}

type optimizeRequest struct {
	Prompt string `json:"prompt"`
}

// HandleOptimize rewrites a draft into a structured prompt.
//
// HTTP: POST /api/ai/optimize (bearer, non-guest) → {"optimized": "..."}
// Returns 503 when no API key is configured.
func (h *AIHandler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}
	if !policy.Allows(principal, policy.CapUseAI) {
		writeError(w, apperror.Forbidden("guests cannot use AI assistance"))
		return
	}

	var req optimizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	optimized, err := h.optimizer.Optimize(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"optimized": optimized})
}

type ideasRequest struct {
	Topic string `json:"topic"`
}

// HandleIdeas suggests prompt ideas for a topic.
//
// HTTP: POST /api/ai/ideas (bearer, non-guest) → {"ideas": ["...", ...]}
func (h *AIHandler) HandleIdeas(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}
	if !policy.Allows(principal, policy.CapUseAI) {
		writeError(w, apperror.Forbidden("guests cannot use AI assistance"))
		return
	}

	var req ideasRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ideas, err := h.optimizer.GenerateIdeas(r.Context(), req.Topic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"ideas": ideas})
}
