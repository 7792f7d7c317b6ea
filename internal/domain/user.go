package domain

// UserRole separates administrators from regular requesters.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// User is a desk account. Usernames are unique.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         UserRole
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session carries the authenticated caller into service operations.
// Authorization context is always passed explicitly, never read from
// ambient state.
type Session struct {
	Username string
	IsAdmin  bool
}
