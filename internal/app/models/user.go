package models

// UserRole represents the role of a platform account
type UserRole string

const (
	// RoleStudent is the default role for registered accounts
	RoleStudent UserRole = "student"
	// RoleManager is a club manager account
	RoleManager UserRole = "manager"
	// RoleAdmin is a platform administrator account
	RoleAdmin UserRole = "admin"
)

// UserStatus represents whether an account may sign in
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User represents a platform account as returned by the backend
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status,omitempty"`
	AvatarURL string     `json:"avatarUrl,omitempty"`
}

// Session is the client-held proof of authentication. It is created from the
// login/register response body and persisted verbatim; the token format is
// backend-defined and treated as opaque.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// IsValid reports whether the session carries enough data to gate views
func (s *Session) IsValid() bool {
	return s != nil && s.Token != "" && s.User.Role != ""
}
