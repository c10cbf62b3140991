package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/xid"
	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/model"
)

func TestListCategories_SystemFirstThenAlphabetical(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mine := &model.Category{
		ID:     xid.New().String(),
		Name:   "AAA Custom", // alphabetically before every system category
		Type:   model.CategoryUser,
		Icon:   model.DefaultCategoryIcon,
		UserID: "user2",
	}
	if err := db.CreateCategory(ctx, mine); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	categories, err := db.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 7 {
		t.Fatalf("category count = %d, want 7", len(categories))
	}
	// Despite sorting first alphabetically, the user category comes after
	// all six system ones.
	if categories[len(categories)-1].ID != mine.ID {
		t.Errorf("user category sorted at %v, want last", categories)
	}
	if categories[0].Type != model.CategorySystem {
		t.Errorf("first category type = %q, want system", categories[0].Type)
	}
}

func TestGetCategoryByName_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)

	c, err := db.GetCategoryByName(context.Background(), "CODING")
	if err != nil {
		t.Fatalf("GetCategoryByName(CODING) error = %v", err)
	}
	if c.ID != "coding" {
		t.Errorf("matched %s, want coding", c.ID)
	}
}

func TestCreateCategory_DuplicateNameConflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.Category{
		ID:     xid.New().String(),
		Name:   "Research",
		Type:   model.CategoryUser,
		Icon:   model.DefaultCategoryIcon,
		UserID: "user2",
	}
	if err := db.CreateCategory(ctx, first); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	// A case variant must be rejected by the store itself — the constraint
	// is what catches two concurrent creates that both saw the name free.
	second := &model.Category{
		ID:     xid.New().String(),
		Name:   "RESEARCH",
		Type:   model.CategoryUser,
		Icon:   model.DefaultCategoryIcon,
		UserID: "user1",
	}
	if err := db.CreateCategory(ctx, second); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateCategory(case variant) error = %v, want ErrConflict", err)
	}
}

func TestDeleteCategory_ReassignsPromptsToFallback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// demo1 is seeded into "coding". Delete the category and the prompt
	// must land in "other" rather than dangling.
	if err := db.DeleteCategory(ctx, "coding", model.FallbackCategoryID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}

	if _, err := db.GetCategoryByID(ctx, "coding"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("deleted category still readable, error = %v", err)
	}

	p, err := db.GetPromptByID(ctx, "demo1", "")
	if err != nil {
		t.Fatalf("GetPromptByID(demo1) error = %v", err)
	}
	if p.CategoryID != model.FallbackCategoryID {
		t.Errorf("reassigned category = %q, want %q", p.CategoryID, model.FallbackCategoryID)
	}
}

func TestDeleteCategory_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteCategory(context.Background(), "ghost", model.FallbackCategoryID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteCategory(ghost) error = %v, want ErrNotFound", err)
	}
}
