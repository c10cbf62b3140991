package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/repository"
)

// compile-time check that *DB implements repository.PromptRepository
var _ repository.PromptRepository = (*DB)(nil)

// Tags are stored as a JSON array in a TEXT column.
//
// WHY NOT A JOIN TABLE?
// Tags here are free-form labels the filter engine matches as strings, not
// entities with their own lifecycle. A prompt_tags table would buy
// referential integrity nobody needs at the cost of a join on every
// listing. JSON-in-TEXT keeps reads single-row and writes single-statement.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string, into *[]string) error {
	if raw == "" {
		*into = []string{}
		return nil
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return fmt.Errorf("decoding tags %q: %w", raw, err)
	}
	return nil
}

// promptColumns is the SELECT list shared by every prompt query. The last
// column is the per-requester favorite annotation, computed by the
// user_favorites LEFT JOIN — NULL (scanned as false) when the requester
// has not favorited the row, or when there is no requester at all.
const promptColumns = `
	p.id, p.title, p.content, p.description, p.category_id, p.tags,
	p.created_at, p.updated_at, p.user_id, p.author_name, p.visibility,
	f.prompt_id IS NOT NULL AS is_favorite`

const promptFrom = `
	FROM prompts p
	LEFT JOIN user_favorites f ON f.prompt_id = p.id AND f.user_id = ?`

func scanPrompt(rows interface{ Scan(...any) error }) (model.Prompt, error) {
	var p model.Prompt
	var rawTags string
	err := rows.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Description,
		&p.CategoryID,
		&rawTags,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.UserID,
		&p.AuthorName,
		&p.Visibility,
		&p.IsFavorite,
	)
	if err != nil {
		return model.Prompt{}, err
	}
	if err := decodeTags(rawTags, &p.Tags); err != nil {
		return model.Prompt{}, err
	}
	return p, nil
}

// ListPromptsForUser returns the requester's own prompts plus every public
// prompt, newest-updated first. This is the server half of the visibility
// contract: a foreign private prompt is excluded HERE, before it ever
// reaches a response body.
func (db *DB) ListPromptsForUser(ctx context.Context, userID string) ([]model.Prompt, error) {
	return db.listPrompts(ctx,
		`SELECT `+promptColumns+promptFrom+`
		 WHERE p.user_id = ? OR p.visibility = 'public'
		 ORDER BY p.updated_at DESC`,
		userID, userID,
	)
}

// ListPublicPrompts is the anonymous listing: public rows only, favorite
// annotation always false (the join key is the empty string, which matches
// no favorites row).
func (db *DB) ListPublicPrompts(ctx context.Context) ([]model.Prompt, error) {
	return db.listPrompts(ctx,
		`SELECT `+promptColumns+promptFrom+`
		 WHERE p.visibility = 'public'
		 ORDER BY p.updated_at DESC`,
		"",
	)
}

func (db *DB) listPrompts(ctx context.Context, query string, args ...any) ([]model.Prompt, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing prompts: %w", err)
	}
	defer rows.Close()

	var prompts []model.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning prompt row: %w", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating prompt rows: %w", err)
	}
	return prompts, nil
}

// GetPromptByID fetches a single prompt with the favorite flag annotated
// for requesterID. Authorization is NOT applied here — the service layer
// decides who may see or touch the row.
func (db *DB) GetPromptByID(ctx context.Context, id, requesterID string) (*model.Prompt, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+promptColumns+promptFrom+` WHERE p.id = ?`,
		requesterID, id,
	)
	p, err := scanPrompt(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("prompt", id)
		}
		return nil, fmt.Errorf("sqlite: getting prompt %s: %w", id, err)
	}
	return &p, nil
}

func (db *DB) CreatePrompt(ctx context.Context, prompt *model.Prompt) error {
	rawTags, err := encodeTags(prompt.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO prompts (id, title, content, description, category_id, tags,
		                      created_at, updated_at, user_id, author_name, visibility)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		prompt.ID,
		prompt.Title,
		prompt.Content,
		prompt.Description,
		prompt.CategoryID,
		rawTags,
		prompt.CreatedAt,
		prompt.UpdatedAt,
		prompt.UserID,
		prompt.AuthorName,
		prompt.Visibility,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting prompt %s: %w", prompt.ID, err)
	}
	return nil
}

// UpdatePrompt rewrites the mutable columns. Ownership (user_id,
// author_name) and created_at never change on update — ownership moves
// only through user deletion.
func (db *DB) UpdatePrompt(ctx context.Context, prompt *model.Prompt) error {
	rawTags, err := encodeTags(prompt.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	res, err := db.conn.ExecContext(ctx,
		`UPDATE prompts
		 SET title = ?, content = ?, description = ?, category_id = ?, tags = ?,
		     visibility = ?, updated_at = ?
		 WHERE id = ?`,
		prompt.Title,
		prompt.Content,
		prompt.Description,
		prompt.CategoryID,
		rawTags,
		prompt.Visibility,
		prompt.UpdatedAt,
		prompt.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating prompt %s: %w", prompt.ID, err)
	}
	return requireRow(res, "prompt", prompt.ID)
}

func (db *DB) DeletePrompt(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting prompt %s: %w", id, err)
	}
	// Favorite rows for the prompt disappear via ON DELETE CASCADE.
	return requireRow(res, "prompt", id)
}

// ToggleFavorite flips the (user, prompt) favorite row and returns the new
// state. The DELETE-first approach makes the toggle idempotent-per-call
// without needing to read before writing.
func (db *DB) ToggleFavorite(ctx context.Context, userID, promptID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_favorites WHERE user_id = ? AND prompt_id = ?`,
		userID, promptID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if n > 0 {
		// A row existed — the toggle turned the favorite off.
		return false, nil
	}

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_favorites (user_id, prompt_id) VALUES (?, ?)`,
		userID, promptID,
	); err != nil {
		return false, fmt.Errorf("sqlite: inserting favorite: %w", err)
	}
	return true, nil
}
