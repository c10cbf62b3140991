// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the only implementation;
// tests substitute in-memory mocks.
//
// Method names are entity-qualified (GetUserByID, not GetByID) so a single
// store type can implement every interface at once.
package repository

import (
	"context"

	"github.com/sakif/promptmaster/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByName matches case-insensitively (display names are unique
	// under COLLATE NOCASE).
	GetUserByName(ctx context.Context, name string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// UpdatePassword stores a new hash and clears the first-login flag.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string, when int64) error
	// DeleteUser removes the user and, in the same transaction, reassigns
	// all their prompts (owner id and denormalized author name) to the
	// heir. The user's favorite rows go with them via cascade.
	DeleteUser(ctx context.Context, id, heirID, heirName string) error
}

type CategoryRepository interface {
	// ListCategories returns system categories before user categories,
	// alphabetical within each group.
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	// DeleteCategory reassigns every prompt in the category to fallbackID
	// and then removes the category row, atomically.
	DeleteCategory(ctx context.Context, id, fallbackID string) error
}

type PromptRepository interface {
	// ListPromptsForUser returns the user's own prompts plus all public
	// prompts, newest-updated first, each annotated with the user's
	// favorite flag.
	ListPromptsForUser(ctx context.Context, userID string) ([]model.Prompt, error)
	// ListPublicPrompts returns public prompts only; the favorite flag is
	// always false because there is no requesting user.
	ListPublicPrompts(ctx context.Context) ([]model.Prompt, error)
	// GetPromptByID annotates the favorite flag for requesterID; pass ""
	// for an anonymous read.
	GetPromptByID(ctx context.Context, id, requesterID string) (*model.Prompt, error)
	CreatePrompt(ctx context.Context, prompt *model.Prompt) error
	UpdatePrompt(ctx context.Context, prompt *model.Prompt) error
	DeletePrompt(ctx context.Context, id string) error
	// ToggleFavorite inserts or removes the (user, prompt) favorite row and
	// returns the resulting state.
	ToggleFavorite(ctx context.Context, userID, promptID string) (bool, error)
}

type SettingsRepository interface {
	// AllowRegistration defaults to false when the setting row is absent.
	AllowRegistration(ctx context.Context) (bool, error)
	SetAllowRegistration(ctx context.Context, allowed bool) error
}
