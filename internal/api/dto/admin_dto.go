package dto

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the signed session token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// CreateUserRequest payload.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserResponse renders an account without credentials.
type UserResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// SetPasswordRequest payload for admin password resets.
type SetPasswordRequest struct {
	Password string `json:"password"`
}

// NameRequest payload for registry entries (UBS, sectors).
type NameRequest struct {
	Name string `json:"name"`
}

// RenameRequest payload.
type RenameRequest struct {
	NewName string `json:"new_name"`
}
