package model

// Visibility is binary per prompt: public prompts are readable by any
// principal (guest included), private prompts only by their owner
// (admins may still edit and delete them, but never list them).
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the two known visibilities.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Prompt is a stored LLM prompt.
//
// AuthorName is denormalized: it is the owner's display name at creation or
// reassignment time, never a live lookup against the users table.
//
// IsFavorite is NOT a column on the prompt — it only exists relative to the
// requesting user, annotated by the repository from the user_favorites join.
// For unauthenticated listings it is always false.
type Prompt struct {
	ID          string     `json:"id"          db:"id"`
	Title       string     `json:"title"       db:"title"`
	Content     string     `json:"content"     db:"content"`
	Description string     `json:"description" db:"description"`
	CategoryID  string     `json:"categoryId"  db:"category_id"`
	Tags        []string   `json:"tags"        db:"tags"` // stored as a JSON array
	CreatedAt   int64      `json:"createdAt"   db:"created_at"`
	UpdatedAt   int64      `json:"updatedAt"   db:"updated_at"`
	UserID      string     `json:"userId"      db:"user_id"` // owner
	AuthorName  string     `json:"authorName"  db:"author_name"`
	Visibility  Visibility `json:"visibility"  db:"visibility"`
	IsFavorite  bool       `json:"isFavorite"` // per-requester, derived
}
