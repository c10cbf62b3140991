package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/policy"
	"github.com/sakif/promptmaster/internal/repository"
)

const MaxCategoryNameLength = 50

// CategoryService handles category listing, creation, and deletion.
type CategoryService struct {
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewCategoryService(categories repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// List returns all categories, system before user, alphabetical within each
// group. Categories carry no secrets, so there is no per-principal filter.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.ListCategories(ctx)
}

type CreateCategoryInput struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Create adds a user category owned by the principal. Names are unique
// across BOTH groups, case-insensitively — a user cannot shadow the system
// "Coding" with their own "coding".
func (s *CategoryService) Create(ctx context.Context, p model.Principal, in CreateCategoryInput) (*model.Category, error) {
	if !policy.Allows(p, policy.CapCreateCategory) {
		return nil, apperror.Forbidden("guests cannot create categories")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if len(name) > MaxCategoryNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or fewer", MaxCategoryNameLength))
	}

	existing, err := s.categories.GetCategoryByName(ctx, name)
	switch {
	case err == nil:
		return nil, apperror.Conflict("category", existing.Name)
	case !errors.Is(err, apperror.ErrNotFound):
		// A store failure is not "name is free" — surface it.
		return nil, err
	}

	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = model.DefaultCategoryIcon
	}

	category := &model.Category{
		ID:     xid.New().String(),
		Name:   name,
		Type:   model.CategoryUser,
		Icon:   icon,
		UserID: p.ID,
	}

	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created", "categoryID", category.ID, "name", name, "by", p.ID)
	return category, nil
}

// Delete removes a category and moves its prompts to the fallback, in one
// transaction. Admin only; the fallback itself is undeletable — it is where
// orphaned prompts land, so deleting it would leave them nowhere to go.
func (s *CategoryService) Delete(ctx context.Context, p model.Principal, id string) error {
	if !policy.Allows(p, policy.CapDeleteCategory) {
		return apperror.Forbidden("only admins can delete categories")
	}
	if id == model.FallbackCategoryID {
		return apperror.Forbidden("the fallback category cannot be deleted")
	}

	if _, err := s.categories.GetCategoryByID(ctx, id); err != nil {
		return err
	}

	if err := s.categories.DeleteCategory(ctx, id, model.FallbackCategoryID); err != nil {
		return err
	}

	s.logger.Info("category deleted", "categoryID", id, "by", p.ID)
	return nil
}
