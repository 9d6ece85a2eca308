package model

import "time"

// Role is the access level of an account.  Only two values exist and the
// database column is constrained to them.
type Role string

const (
	RoleUser  Role = "user"  // default role for every sign-up
	RoleAdmin Role = "admin" // moderation role, granted out of band
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an account as stored in the `users` table.  The
// password is never kept in plain text; PasswordHash holds the bcrypt
// digest.  The slice fields are only populated by the hydrating
// repository queries (profile and admin listings).
//
// Fields:
//
//	ID            – UUID primary key.
//	FirstName     – given name (2..100 chars).
//	LastName      – family name (2..100 chars).
//	Username      – globally unique login name.
//	PasswordHash  – bcrypt hash of the password.
//	Role          – user or admin.
//	CreatedAt     – timestamp of creation.
type User struct {
	ID           string    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	CreatedAt    time.Time // users.created_at

	Posts         []Post
	Comments      []Comment
	RefreshTokens []RefreshToken
}

// FullName joins first and last name with a single space.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserPatch carries the optional profile fields of a partial update.  A nil
// field means "leave unchanged".
type UserPatch struct {
	FirstName *string
	LastName  *string
	Username  *string
}

// Empty reports whether the patch touches no field at all.
func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Username == nil
}

// Apply copies every present field onto u.
func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
}
