package domain

import "time"

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// SeededRoles is the fixed role set guaranteed to exist after the bootstrap
// flow has run.
var SeededRoles = []string{RoleAdmin, RoleUser}

// User models a registrable principal. The password itself is never held;
// PasswordHash is a bcrypt digest owned by the credential store.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	NeptunCode   string    `json:"neptun_code,omitempty"`
	Department   string    `json:"department,omitempty"`
	IsUser       bool      `json:"is_user"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is a named authorization group an account may belong to.
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
