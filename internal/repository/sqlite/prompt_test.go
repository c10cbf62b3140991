package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/visibility"
)

func TestListPromptsForUser_OwnPlusPublic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Seed: demo1 (public, user1), demo2 (private, user1), demo3 (public, user2).
	prompts, err := db.ListPromptsForUser(ctx, "user2")
	if err != nil {
		t.Fatalf("ListPromptsForUser() error = %v", err)
	}

	ids := make(map[string]bool, len(prompts))
	for _, p := range prompts {
		ids[p.ID] = true
	}
	if !ids["demo1"] || !ids["demo3"] {
		t.Errorf("listing for user2 = %v, want demo1 and demo3 present", ids)
	}
	if ids["demo2"] {
		t.Error("user2's listing contains user1's private prompt")
	}
}

func TestListPromptsForUser_NewestUpdatedFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := createTestPrompt(t, db, "user1", "Admin User", model.VisibilityPublic)

	// Bump demo3's updated_at past everything else.
	demo3, err := db.GetPromptByID(ctx, "demo3", "")
	if err != nil {
		t.Fatalf("GetPromptByID(demo3) error = %v", err)
	}
	demo3.UpdatedAt = time.Now().UnixMilli() + 10_000
	if err := db.UpdatePrompt(ctx, demo3); err != nil {
		t.Fatalf("UpdatePrompt() error = %v", err)
	}

	prompts, err := db.ListPromptsForUser(ctx, "user1")
	if err != nil {
		t.Fatalf("ListPromptsForUser() error = %v", err)
	}
	if len(prompts) < 2 {
		t.Fatalf("listing too short: %d", len(prompts))
	}
	if prompts[0].ID != "demo3" {
		t.Errorf("first prompt = %s, want demo3 (most recently updated)", prompts[0].ID)
	}
	_ = p
}

func TestListPublicPrompts_NoFavoriteAnnotation(t *testing.T) {
	db := newTestDB(t)

	prompts, err := db.ListPublicPrompts(context.Background())
	if err != nil {
		t.Fatalf("ListPublicPrompts() error = %v", err)
	}
	for _, p := range prompts {
		if p.Visibility != model.VisibilityPublic {
			t.Errorf("anonymous listing contains %s prompt %s", p.Visibility, p.ID)
		}
		if p.IsFavorite {
			t.Errorf("anonymous listing annotates %s as favorite", p.ID)
		}
	}
}

// The SQL WHERE clause and the in-process engine implement the same
// visibility rule. If they ever drift, a prompt could be filtered on one
// side but leak on the other — this pins them together.
func TestListPromptsForUser_AgreesWithEngine(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestPrompt(t, db, "user2", "Jane Doe", model.VisibilityPrivate)

	// The full library, read raw.
	rows, err := db.conn.Query(`SELECT id FROM prompts`)
	if err != nil {
		t.Fatalf("reading all prompt ids: %v", err)
	}
	// Drain the cursor before issuing further queries: the in-memory test
	// database runs on a single pooled connection, and GetPromptByID would
	// deadlock waiting for it while rows holds it open.
	var allIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scanning id: %v", err)
		}
		allIDs = append(allIDs, id)
	}
	rows.Close()
	var all []model.Prompt
	for _, id := range allIDs {
		p, err := db.GetPromptByID(ctx, id, "")
		if err != nil {
			t.Fatalf("GetPromptByID(%s): %v", id, err)
		}
		all = append(all, *p)
	}

	for _, requester := range []model.Principal{
		{ID: "user1", Name: "Admin User", Role: model.RoleAdmin},
		{ID: "user2", Name: "Jane Doe", Role: model.RoleUser},
	} {
		listed, err := db.ListPromptsForUser(ctx, requester.ID)
		if err != nil {
			t.Fatalf("ListPromptsForUser(%s) error = %v", requester.ID, err)
		}
		sqlIDs := make(map[string]bool, len(listed))
		for _, p := range listed {
			sqlIDs[p.ID] = true
		}

		engineIDs := make(map[string]bool, len(all))
		for _, p := range all {
			if visibility.VisibleToRequester(requester, p) {
				engineIDs[p.ID] = true
			}
		}

		if !reflect.DeepEqual(sqlIDs, engineIDs) {
			t.Errorf("requester %s: SQL visible set %v, engine visible set %v",
				requester.ID, sqlIDs, engineIDs)
		}
	}
}

func TestPromptTagsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := createTestPrompt(t, db, "user1", "Admin User", model.VisibilityPrivate)
	p.Tags = []string{"one", "two", "three"}
	p.UpdatedAt++
	if err := db.UpdatePrompt(ctx, p); err != nil {
		t.Fatalf("UpdatePrompt() error = %v", err)
	}

	got, err := db.GetPromptByID(ctx, p.ID, "")
	if err != nil {
		t.Fatalf("GetPromptByID() error = %v", err)
	}
	if !reflect.DeepEqual(got.Tags, []string{"one", "two", "three"}) {
		t.Errorf("tags = %v, want [one two three]", got.Tags)
	}

	// nil tags store as an empty array, not NULL or the string "null".
	p.Tags = nil
	p.UpdatedAt++
	if err := db.UpdatePrompt(ctx, p); err != nil {
		t.Fatalf("UpdatePrompt(nil tags) error = %v", err)
	}
	got, err = db.GetPromptByID(ctx, p.ID, "")
	if err != nil {
		t.Fatalf("GetPromptByID() error = %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("tags after nil write = %#v, want empty slice", got.Tags)
	}
}

func TestUpdatePrompt_DoesNotChangeOwnership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := createTestPrompt(t, db, "user2", "Jane Doe", model.VisibilityPublic)
	p.Title = "Edited"
	p.UserID = "user1"        // must be ignored
	p.AuthorName = "Intruder" // must be ignored
	if err := db.UpdatePrompt(ctx, p); err != nil {
		t.Fatalf("UpdatePrompt() error = %v", err)
	}

	got, err := db.GetPromptByID(ctx, p.ID, "")
	if err != nil {
		t.Fatalf("GetPromptByID() error = %v", err)
	}
	if got.Title != "Edited" {
		t.Errorf("title = %q, want Edited", got.Title)
	}
	if got.UserID != "user2" || got.AuthorName != "Jane Doe" {
		t.Errorf("ownership changed on update: %s/%s", got.UserID, got.AuthorName)
	}
}

func TestDeletePrompt_CascadesFavorites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// demo1 carries the seeded user1 favorite.
	if err := db.DeletePrompt(ctx, "demo1"); err != nil {
		t.Fatalf("DeletePrompt() error = %v", err)
	}

	if _, err := db.GetPromptByID(ctx, "demo1", ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("deleted prompt still readable, error = %v", err)
	}

	var favCount int
	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM user_favorites WHERE prompt_id = 'demo1'`,
	).Scan(&favCount); err != nil {
		t.Fatalf("counting favorites: %v", err)
	}
	if favCount != 0 {
		t.Errorf("favorite rows for deleted prompt = %d, want 0", favCount)
	}
}

func TestToggleFavorite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// user2 has no favorite on demo1: first toggle turns it on.
	on, err := db.ToggleFavorite(ctx, "user2", "demo1")
	if err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if !on {
		t.Error("first toggle = off, want on")
	}

	p, err := db.GetPromptByID(ctx, "demo1", "user2")
	if err != nil {
		t.Fatalf("GetPromptByID() error = %v", err)
	}
	if !p.IsFavorite {
		t.Error("favorite not annotated after toggle on")
	}

	// Favorites are per-user: user1's seeded favorite is untouched, and the
	// annotation for a third party stays false.
	p, err = db.GetPromptByID(ctx, "demo1", "user1")
	if err != nil {
		t.Fatalf("GetPromptByID() error = %v", err)
	}
	if !p.IsFavorite {
		t.Error("another user's toggle disturbed user1's favorite")
	}

	off, err := db.ToggleFavorite(ctx, "user2", "demo1")
	if err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if off {
		t.Error("second toggle = on, want off")
	}
}
