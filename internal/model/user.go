// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain values with no behaviour
// beyond a few derived predicates. All persistence and business rules live in
// the repository and service layers.
package model

import "time"

// Role is the access level of a user account.
//
// The set of roles is fixed and known at compile time. Keeping it as a typed
// string constant (rather than an int enum) means the value stored in the
// database and the value serialized to JSON are the same human-readable word.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
)

// roleLabels maps each role to its display label.
var roleLabels = map[Role]string{
	RoleUser:      "User",
	RoleModerator: "Moderator",
	RoleAdmin:     "Administrator",
	RoleSuperuser: "Superuser",
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the human-readable display label for the role.
// Unknown roles fall back to the raw string value.
func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// ReservedUsername may not be registered: it collides with the
// /api/v1/users/me self-service route.
const ReservedUsername = "me"

// User represents a registered account.
//
// ConfirmationCode is the secret issued at signup and exchanged for an access
// token. It is set once, on the first signup call, and never rotated — a
// repeated signup with the same (username, email) pair returns the same code.
// The json:"-" tag keeps it out of every API response.
type User struct {
	ID               string    `json:"-"          db:"id"`
	Username         string    `json:"username"   db:"username"`
	Email            string    `json:"email"      db:"email"`
	FirstName        string    `json:"first_name" db:"first_name"`
	LastName         string    `json:"last_name"  db:"last_name"`
	Bio              string    `json:"bio"        db:"bio"`
	Role             Role      `json:"role"       db:"role"`
	IsSuperuser      bool      `json:"-"          db:"is_superuser"`
	ConfirmationCode string    `json:"-"          db:"confirmation_code"`
	CreatedAt        time.Time `json:"-"          db:"created_at"`
	UpdatedAt        time.Time `json:"-"          db:"updated_at"`
}

// IsAdmin reports whether the user has administrative capability.
// Superusers are always admins regardless of their stored role.
//
// The receiver is a pointer so a nil *User can stand in for an anonymous
// actor: an unauthenticated request is never admin.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.IsSuperuser
}

// IsModerator reports whether the user holds the moderator role.
func (u *User) IsModerator() bool {
	return u != nil && u.Role == RoleModerator
}
