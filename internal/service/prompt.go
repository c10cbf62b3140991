package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/policy"
	"github.com/sakif/promptmaster/internal/repository"
)

const (
	MaxPromptTitleLength   = 200
	MaxPromptContentLength = 50000
)

// PromptService handles the prompt lifecycle and favorites.
type PromptService struct {
	prompts    repository.PromptRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewPromptService(
	prompts repository.PromptRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *PromptService {
	return &PromptService{prompts: prompts, categories: categories, logger: logger}
}

// List returns the prompts visible to the principal: their own plus every
// public one, favorite-annotated, newest-updated first. Guests get the
// public listing (no favorites to annotate).
func (s *PromptService) List(ctx context.Context, p model.Principal) ([]model.Prompt, error) {
	if p.IsGuest() {
		return s.prompts.ListPublicPrompts(ctx)
	}
	return s.prompts.ListPromptsForUser(ctx, p.ID)
}

// ListPublic is the unauthenticated listing.
func (s *PromptService) ListPublic(ctx context.Context) ([]model.Prompt, error) {
	return s.prompts.ListPublicPrompts(ctx)
}

// CreatePromptInput carries the user-settable fields of a new prompt.
type CreatePromptInput struct {
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Description string           `json:"description"`
	CategoryID  string           `json:"categoryId"`
	Tags        []string         `json:"tags"`
	Visibility  model.Visibility `json:"visibility"`
}

// Create validates and stores a new prompt owned by the principal. The
// author name is denormalized from the principal at this moment and never
// tracks later renames.
func (s *PromptService) Create(ctx context.Context, p model.Principal, in CreatePromptInput) (*model.Prompt, error) {
	if !policy.Allows(p, policy.CapCreatePrompt) {
		return nil, apperror.Forbidden("guests cannot create prompts")
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(in.Title) > MaxPromptTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or fewer", MaxPromptTitleLength))
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if len(in.Content) > MaxPromptContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or fewer", MaxPromptContentLength))
	}
	if in.CategoryID == "" {
		return nil, apperror.ValidationFailed("categoryId", "category is required")
	}
	if _, err := s.categories.GetCategoryByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	// Unspecified visibility means private — sharing is an explicit act.
	if in.Visibility == "" {
		in.Visibility = model.VisibilityPrivate
	}
	if !in.Visibility.Valid() {
		return nil, apperror.ValidationFailed("visibility",
			fmt.Sprintf("unknown visibility %q", in.Visibility))
	}

	now := time.Now().UnixMilli()
	prompt := &model.Prompt{
		ID:          xid.New().String(),
		Title:       in.Title,
		Content:     in.Content,
		Description: strings.TrimSpace(in.Description),
		CategoryID:  in.CategoryID,
		Tags:        normalizeInputTags(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      p.ID,
		AuthorName:  p.Name,
		Visibility:  in.Visibility,
	}

	if err := s.prompts.CreatePrompt(ctx, prompt); err != nil {
		return nil, err
	}

	s.logger.Info("prompt created", "promptID", prompt.ID, "userID", p.ID, "visibility", prompt.Visibility)
	return prompt, nil
}

// UpdatePromptInput is a partial update: nil pointer means "leave as is".
// This distinguishes "clear the description" (pointer to "") from "don't
// touch the description" (nil) — a plain struct can't express that.
type UpdatePromptInput struct {
	Title       *string           `json:"title"`
	Content     *string           `json:"content"`
	Description *string           `json:"description"`
	CategoryID  *string           `json:"categoryId"`
	Tags        *[]string         `json:"tags"`
	Visibility  *model.Visibility `json:"visibility"`
}

// Update applies a partial update to a prompt the principal may modify
// (owner or admin). Ownership and author name are never touched here.
func (s *PromptService) Update(ctx context.Context, p model.Principal, id string, in UpdatePromptInput) (*model.Prompt, error) {
	prompt, err := s.prompts.GetPromptByID(ctx, id, p.ID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyPrompt(p, prompt.UserID) {
		return nil, apperror.Forbidden("only the owner or an admin can modify this prompt")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title is required")
		}
		if len(title) > MaxPromptTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or fewer", MaxPromptTitleLength))
		}
		prompt.Title = title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, apperror.ValidationFailed("content", "content is required")
		}
		if len(*in.Content) > MaxPromptContentLength {
			return nil, apperror.ValidationFailed("content",
				fmt.Sprintf("content must be %d characters or fewer", MaxPromptContentLength))
		}
		prompt.Content = *in.Content
	}
	if in.Description != nil {
		prompt.Description = strings.TrimSpace(*in.Description)
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetCategoryByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		prompt.CategoryID = *in.CategoryID
	}
	if in.Tags != nil {
		prompt.Tags = normalizeInputTags(*in.Tags)
	}
	if in.Visibility != nil {
		if !in.Visibility.Valid() {
			return nil, apperror.ValidationFailed("visibility",
				fmt.Sprintf("unknown visibility %q", *in.Visibility))
		}
		prompt.Visibility = *in.Visibility
	}

	prompt.UpdatedAt = time.Now().UnixMilli()
	if err := s.prompts.UpdatePrompt(ctx, prompt); err != nil {
		return nil, err
	}

	s.logger.Info("prompt updated", "promptID", prompt.ID, "by", p.ID)
	return prompt, nil
}

// Delete removes a prompt the principal may modify (owner or admin).
func (s *PromptService) Delete(ctx context.Context, p model.Principal, id string) error {
	prompt, err := s.prompts.GetPromptByID(ctx, id, p.ID)
	if err != nil {
		return err
	}
	if !policy.CanModifyPrompt(p, prompt.UserID) {
		return apperror.Forbidden("only the owner or an admin can delete this prompt")
	}

	if err := s.prompts.DeletePrompt(ctx, id); err != nil {
		return err
	}

	s.logger.Info("prompt deleted", "promptID", id, "by", p.ID)
	return nil
}

// ToggleFavorite flips the principal's favorite on a prompt and returns the
// new state. Any existing prompt can be favorited — including a foreign
// private one, if its id is known; the favorite never grants visibility.
func (s *PromptService) ToggleFavorite(ctx context.Context, p model.Principal, id string) (bool, error) {
	if !policy.Allows(p, policy.CapToggleFavorite) {
		return false, apperror.Forbidden("guests cannot favorite prompts")
	}

	if _, err := s.prompts.GetPromptByID(ctx, id, p.ID); err != nil {
		return false, err
	}

	return s.prompts.ToggleFavorite(ctx, p.ID, id)
}

// normalizeInputTags trims whitespace and drops empties; casing is kept as
// typed (the filter engine lowercases at match time).
func normalizeInputTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
