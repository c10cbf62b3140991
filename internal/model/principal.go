package model

// Principal is the identity making a request: the minimal slice of a User
// that travels inside the session token and the request context.
//
// WHY NOT PASS *User AROUND?
// The token is stateless — validating it must not require a database lookup.
// Everything authorization needs (id + role) and everything denormalization
// needs (the display name, stamped onto prompts as authorName) is right here.
type Principal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// GuestPrincipal returns the fixed, non-authenticated guest identity.
// The rest of the system treats it as a valid principal with role guest.
func GuestPrincipal() Principal {
	return Principal{ID: GuestUserID, Name: "Guest", Role: RoleGuest}
}

// IsGuest reports whether the principal is the synthetic guest.
func (p Principal) IsGuest() bool {
	return p.Role == RoleGuest
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PrincipalOf extracts the principal view of a user record.
func PrincipalOf(u User) Principal {
	return Principal{ID: u.ID, Name: u.Name, Role: u.Role}
}
