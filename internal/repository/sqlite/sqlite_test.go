package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/promptmaster/internal/model"
)

// newTestDB opens a fresh in-memory database. Every test gets its own
// schema and its own copy of the seed data (two users, six system
// categories, three demo prompts, one favorite).
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestPrompt(t *testing.T, db *DB, userID, authorName string, visibility model.Visibility) *model.Prompt {
	t.Helper()
	now := time.Now().UnixMilli()
	p := &model.Prompt{
		ID:         xid.New().String(),
		Title:      "Test Prompt",
		Content:    "Do the thing.",
		CategoryID: "other",
		Tags:       []string{"test"},
		CreatedAt:  now,
		UpdatedAt:  now,
		UserID:     userID,
		AuthorName: authorName,
		Visibility: visibility,
	}
	if err := db.CreatePrompt(context.Background(), p); err != nil {
		t.Fatalf("failed to create test prompt: %v", err)
	}
	return p
}

func TestForeignKeyCascades_SurvivePoolRecycling(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Zero idle connections forces every statement onto a freshly opened
	// pool connection. Pragmas are per-connection, so each new connection
	// must arrive with foreign keys already enabled or the favorite
	// cascades silently stop firing.
	db.conn.SetMaxIdleConns(0)
	ctx := context.Background()

	if _, err := db.ToggleFavorite(ctx, "user2", "demo1"); err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if err := db.DeleteUser(ctx, "user2", "user1", "Admin User"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	var favorites int
	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM user_favorites WHERE user_id = 'user2'`,
	).Scan(&favorites); err != nil {
		t.Fatalf("counting favorites: %v", err)
	}
	if favorites != 0 {
		t.Errorf("deleted user still has %d favorite rows, want 0", favorites)
	}

	// Same for the prompt side of the cascade: deleting a prompt removes
	// every user's favorite row for it.
	if err := db.DeletePrompt(ctx, "demo1"); err != nil {
		t.Fatalf("DeletePrompt() error = %v", err)
	}
	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM user_favorites WHERE prompt_id = 'demo1'`,
	).Scan(&favorites); err != nil {
		t.Fatalf("counting prompt favorites: %v", err)
	}
	if favorites != 0 {
		t.Errorf("deleted prompt still has %d favorite rows, want 0", favorites)
	}
}

func TestSeed_OnlyRunsOnce(t *testing.T) {
	db := newTestDB(t)

	// A second migrate+seed pass against the same connection must not
	// duplicate the seed rows.
	if err := db.migrate(); err != nil {
		t.Fatalf("migrate() on existing schema error = %v", err)
	}
	if err := db.seed(); err != nil {
		t.Fatalf("seed() on seeded db error = %v", err)
	}

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Errorf("seeded user count = %d, want 2", len(users))
	}
}

func TestSeed_Contents(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	admin, err := db.GetUserByID(ctx, "user1")
	if err != nil {
		t.Fatalf("GetUserByID(user1) error = %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("seed admin role = %q, want admin", admin.Role)
	}
	if admin.IsFirstLogin {
		t.Error("seed accounts must not be in first-login state")
	}

	categories, err := db.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 6 {
		t.Fatalf("seeded category count = %d, want 6", len(categories))
	}
	for _, c := range categories {
		if c.Type != model.CategorySystem {
			t.Errorf("seed category %s type = %q, want system", c.ID, c.Type)
		}
	}

	// The fallback category must exist — category deletion depends on it.
	if _, err := db.GetCategoryByID(ctx, model.FallbackCategoryID); err != nil {
		t.Errorf("seed is missing the %q category: %v", model.FallbackCategoryID, err)
	}

	// The seeded favorite shows up on the owner's listing.
	prompts, err := db.ListPromptsForUser(ctx, "user1")
	if err != nil {
		t.Fatalf("ListPromptsForUser(user1) error = %v", err)
	}
	var sawFavorite bool
	for _, p := range prompts {
		if p.ID == "demo1" && p.IsFavorite {
			sawFavorite = true
		}
	}
	if !sawFavorite {
		t.Error("seed favorite user1→demo1 not reflected in listing")
	}
}
