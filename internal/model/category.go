package model

// CategoryType distinguishes seeded system categories from user-created ones.
type CategoryType string

const (
	CategorySystem CategoryType = "system"
	CategoryUser   CategoryType = "user"
)

// FallbackCategoryID is the seeded "other" category. It absorbs the prompts
// of any deleted category and can itself never be deleted.
const FallbackCategoryID = "other"

// DefaultCategoryIcon is used when a category is created without an icon.
const DefaultCategoryIcon = "Tag"

// Category groups prompts. System categories are seeded at first start and
// have no owner; user categories belong to the user who created them.
type Category struct {
	ID     string       `json:"id"     db:"id"`
	Name   string       `json:"name"   db:"name"` // unique, case-insensitive
	Type   CategoryType `json:"type"   db:"type"`
	Icon   string       `json:"icon"   db:"icon"`
	UserID string       `json:"userId,omitempty" db:"user_id"` // empty for system categories
}
