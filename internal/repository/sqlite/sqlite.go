// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the binary as a single
// file. No separate database server to install, configure, or manage. For
// a personal/team content tool whose load is measured in hundreds of rows,
// it is the right amount of database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed
// and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface. One struct for all five tables keeps the cross-entity
// transactions (user deletion, category deletion) inside a single type.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite database connection, runs migrations, and seeds the
// initial data if the database is empty.
//
// dbPath examples:
//   - "data/promptmaster.db" → file-based database (persistent)
//   - ":memory:"             → in-memory database (great for tests)
func New(dbPath string) (*DB, error) {
	// Pragmas are PER-CONNECTION, and database/sql opens new connections
	// whenever it pleases — a pragma Exec'd after Open only reaches the one
	// connection that happened to run it. Carrying them in the DSN makes the
	// driver apply them to every connection the pool ever creates:
	//   - foreign_keys: OFF by default in SQLite; the favorites cascade
	//     depends on it firing on whichever connection runs the delete
	//   - WAL mode allows concurrent reads while a write is happening
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" gets its own private database; cap the
	// pool at one so every query sees the same data.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	if err := db.seed(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: seeding database: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to the
// call to New — it flushes the WAL and releases the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// The driver surfaces constraint violations as opaque wrapped errors, so we
// match on the message SQLite itself produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS is idempotent, so
// this runs safely at every start — schema changes happen here, once, at
// store initialization, never in the request path.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL UNIQUE COLLATE NOCASE,
			avatar         TEXT NOT NULL,
			role           TEXT NOT NULL CHECK(role IN ('admin','user','guest')),
			password_hash  TEXT NOT NULL,
			is_first_login INTEGER NOT NULL DEFAULT 1,
			created_at     INTEGER NOT NULL DEFAULT 0,
			last_login_at  INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS categories (
			id      TEXT PRIMARY KEY,
			name    TEXT NOT NULL UNIQUE COLLATE NOCASE,
			type    TEXT NOT NULL CHECK(type IN ('system','user')),
			icon    TEXT NOT NULL DEFAULT 'Tag',
			user_id TEXT REFERENCES users(id) ON DELETE SET NULL
		);

		CREATE TABLE IF NOT EXISTS prompts (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			content     TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category_id TEXT NOT NULL REFERENCES categories(id),
			tags        TEXT NOT NULL DEFAULT '[]',
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			author_name TEXT NOT NULL,
			visibility  TEXT NOT NULL CHECK(visibility IN ('public','private'))
		);
		CREATE INDEX IF NOT EXISTS idx_prompts_updated_at ON prompts(updated_at);
		CREATE INDEX IF NOT EXISTS idx_prompts_user_id ON prompts(user_id);
		CREATE INDEX IF NOT EXISTS idx_prompts_category_id ON prompts(category_id);

		CREATE TABLE IF NOT EXISTS user_favorites (
			user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			prompt_id TEXT NOT NULL REFERENCES prompts(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, prompt_id)
		);

		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// seedPassword is the password both demo accounts start with — fine for a
// demo seed, changed on first real use.
const seedPassword = "password"

// seed inserts the demo accounts, system categories, and example prompts,
// but only into an empty database.
func (db *DB) seed() error {
	var userCount int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if userCount > 0 {
		return nil
	}

	// Hash the demo password at seed time rather than embedding a literal
	// hash; this only runs once, on an empty database.
	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}
	seedHash := string(hashed)
	now := time.Now().UnixMilli()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	users := []struct {
		id, name, avatar, role string
	}{
		{"user1", "Admin User", "AU", "admin"},
		{"user2", "Jane Doe", "JD", "user"},
	}
	for _, u := range users {
		if _, err := tx.Exec(
			`INSERT INTO users (id, name, avatar, role, password_hash, is_first_login, created_at, last_login_at)
			 VALUES (?, ?, ?, ?, ?, 0, ?, 0)`,
			u.id, u.name, u.avatar, u.role, seedHash, now,
		); err != nil {
			return fmt.Errorf("seeding user %s: %w", u.name, err)
		}
	}

	categories := []struct {
		id, name, icon string
	}{
		{"coding", "Coding", "Code"},
		{"writing", "Writing", "PenTool"},
		{"image-gen", "Image Generation", "Image"},
		{"data-analysis", "Data Analysis", "BarChart"},
		{"learning", "Learning", "Book"},
		{"other", "Other", "Tag"},
	}
	for _, c := range categories {
		if _, err := tx.Exec(
			`INSERT INTO categories (id, name, type, icon, user_id) VALUES (?, ?, 'system', ?, NULL)`,
			c.id, c.name, c.icon,
		); err != nil {
			return fmt.Errorf("seeding category %s: %w", c.id, err)
		}
	}

	prompts := []struct {
		id, title, content, description, categoryID, tags, userID, authorName, visibility string
	}{
		{
			"demo1", "React Component Generator",
			"Create a responsive React functional component with TypeScript and Tailwind CSS. Include proper type definitions, state management with hooks, and responsive design patterns.",
			"Standard template for generating UI components.",
			"coding", `["react","typescript","tailwind","ui"]`, "user1", "Admin User", "public",
		},
		{
			"demo2", "Blog Post Outline",
			"Act as a professional content strategist. Create a detailed blog post outline with sections, key points, and SEO recommendations for the given topic.",
			"Structuring blog content efficiently.",
			"writing", `["blog","content","marketing","outline"]`, "user1", "Admin User", "private",
		},
		{
			"demo3", "Midjourney Portrait (Shared)",
			"/imagine prompt: A cinematic portrait of a person in cyberpunk style, neon lighting, detailed face, 8k resolution, dramatic atmosphere --ar 2:3 --v 6",
			"Shared by Jane",
			"image-gen", `["midjourney","portrait","cyberpunk","art"]`, "user2", "Jane Doe", "public",
		},
	}
	for _, p := range prompts {
		if _, err := tx.Exec(
			`INSERT INTO prompts (id, title, content, description, category_id, tags, created_at, updated_at, user_id, author_name, visibility)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.id, p.title, p.content, p.description, p.categoryID, p.tags, now, now, p.userID, p.authorName, p.visibility,
		); err != nil {
			return fmt.Errorf("seeding prompt %s: %w", p.id, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO user_favorites (user_id, prompt_id) VALUES ('user1', 'demo1')`,
	); err != nil {
		return fmt.Errorf("seeding favorite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	return nil
}
