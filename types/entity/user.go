package entity

import (
	"net/http"
	"strings"
	"time"

	types "github.com/desain-gratis/blog/types/http"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleApprover Role = "approver"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleApprover, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Username       string    `json:"username" db:"username"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	Role           Role      `json:"role" db:"role"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) Validate() *types.CommonError {
	if !strings.Contains(u.Email, "@") {
		return types.NewCommonError(http.StatusBadRequest, "BAD_REQUEST", "Invalid email address")
	}
	if strings.TrimSpace(u.Username) == "" {
		return types.NewCommonError(http.StatusBadRequest, "BAD_REQUEST", "Username must not be empty")
	}
	if _, ok := ParseRole(string(u.Role)); !ok {
		return types.NewCommonError(http.StatusBadRequest, "BAD_REQUEST", "Unknown role: "+string(u.Role))
	}
	return nil
}

// Principal is the verified identity attached to a request or a
// long-lived connection. Immutable for the connection's lifetime.
type Principal struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// CanModerate reports whether the principal may act on the approval
// workflow (approve / reject, pending list, pending-blog alerts).
func (p Principal) CanModerate() bool {
	return p.Role == RoleAdmin || p.Role == RoleApprover
}
