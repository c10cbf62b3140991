package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/repository"
)

// compile-time check that *DB implements repository.CategoryRepository
var _ repository.CategoryRepository = (*DB)(nil)

// ListCategories returns all categories, system ones first (they form the
// stable top of the sidebar), each group alphabetical.
func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, type, icon, COALESCE(user_id, '')
		 FROM categories
		 ORDER BY CASE type WHEN 'system' THEN 0 ELSE 1 END, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.UserID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating category rows: %w", err)
	}
	return categories, nil
}

func (db *DB) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	return db.getCategory(ctx, `WHERE id = ?`, id)
}

// GetCategoryByName matches case-insensitively (COLLATE NOCASE column), so
// a user cannot create "coding" next to the system "Coding".
func (db *DB) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return db.getCategory(ctx, `WHERE name = ?`, name)
}

func (db *DB) getCategory(ctx context.Context, where string, arg any) (*model.Category, error) {
	var c model.Category
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, type, icon, COALESCE(user_id, '') FROM categories `+where,
		arg,
	).Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting category %v: %w", arg, err)
	}
	return &c, nil
}

func (db *DB) CreateCategory(ctx context.Context, category *model.Category) error {
	// An empty owner means a system category — store NULL, not "".
	var userID any
	if category.UserID != "" {
		userID = category.UserID
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, icon, user_id) VALUES (?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Type, category.Icon, userID,
	)
	if err != nil {
		// The name column is UNIQUE COLLATE NOCASE — the constraint is the
		// backstop for concurrent creates that both passed the service's
		// pre-insert lookup.
		if isUniqueViolation(err) {
			return apperror.Conflict("category", category.Name)
		}
		return fmt.Errorf("sqlite: inserting category %s: %w", category.Name, err)
	}
	return nil
}

// DeleteCategory moves every prompt in the category to fallbackID and then
// removes the category row. Both run in one transaction — a crash between
// the two must not leave prompts pointing at a deleted category.
func (db *DB) DeleteCategory(ctx context.Context, id, fallbackID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning category delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE prompts SET category_id = ? WHERE category_id = ?`,
		fallbackID, id,
	); err != nil {
		return fmt.Errorf("sqlite: reassigning prompts of category %s: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting category %s: %w", id, err)
	}
	if err := requireRow(res, "category", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing category delete: %w", err)
	}
	return nil
}
