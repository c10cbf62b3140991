// Package policy defines the single capability-evaluation function used by
// both the HTTP route guards and the derived-view layer.
//
// WHY A POLICY PACKAGE?
// The legacy client scattered `role !== 'guest'` and `role === 'admin'`
// string comparisons across every call site. Each ad hoc check is a chance
// for the server and the client to disagree about who may do what. Here the
// rule is written once as a capability table; everything else asks
// policy.Allows(principal, capability) and nothing compares role strings.
package policy

import "github.com/sakif/promptmaster/internal/model"

// Capability names one guarded action.
type Capability int

const (
	// CapCreatePrompt also covers editing and deleting one's own prompts.
	CapCreatePrompt Capability = iota
	CapToggleFavorite
	CapCreateCategory
	CapDeleteCategory
	CapManageUsers
	CapManageSettings
	CapUseAI
)

// Allows reports whether the principal may perform the capability.
//
// The table is intentionally small: guests may do nothing that mutates
// state, authenticated users get the content capabilities, and the
// admin-only capabilities are exactly user management, settings, and
// category deletion.
func Allows(p model.Principal, c Capability) bool {
	switch c {
	case CapCreatePrompt, CapToggleFavorite, CapCreateCategory, CapUseAI:
		return p.Role == model.RoleAdmin || p.Role == model.RoleUser
	case CapDeleteCategory, CapManageUsers, CapManageSettings:
		return p.Role == model.RoleAdmin
	default:
		return false
	}
}

// CanModifyPrompt reports whether the principal may edit or delete a prompt
// owned by ownerID: the owner, or any admin. Guests own nothing.
func CanModifyPrompt(p model.Principal, ownerID string) bool {
	if p.IsGuest() {
		return false
	}
	return p.ID == ownerID || p.Role == model.RoleAdmin
}
