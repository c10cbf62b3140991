// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// Role is a user's permission level. There are exactly three:
//
//	admin — full control, including user management and system categories
//	user  — owns prompts and user categories
//	guest — read-only access to the public library, never persisted
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r == RoleGuest
}

// User represents a registered account.
//
// WHY PasswordHash HAS json:"-"?
// The hash must never leave the server. Tagging the field with "-" makes
// encoding/json skip it entirely, so no handler can leak it by accident.
//
// Avatar is a short display label (the first two characters of the name,
// uppercased), not an image URL. Timestamps are Unix milliseconds to match
// the wire format the web client expects.
type User struct {
	ID           string `json:"id"           db:"id"`
	Name         string `json:"name"         db:"name"` // unique, case-insensitive
	Avatar       string `json:"avatar"       db:"avatar"`
	Role         Role   `json:"role"         db:"role"`
	PasswordHash string `json:"-"            db:"password_hash"`
	IsFirstLogin bool   `json:"isFirstLogin" db:"is_first_login"` // forces a password change
	CreatedAt    int64  `json:"createdAt"    db:"created_at"`
	LastLoginAt  int64  `json:"lastLoginAt"  db:"last_login_at"`
}

// GuestUserID is the fixed id of the synthetic guest identity.
// There is no users row for it — the guest exists only as a principal.
const GuestUserID = "guest"

// GuestUser returns the synthetic guest account. It is granted by an explicit
// client action (browsing without logging in), never by the auth component.
func GuestUser() User {
	return User{
		ID:     GuestUserID,
		Name:   "Guest",
		Avatar: "G",
		Role:   RoleGuest,
	}
}
