package domain

import "time"

// Role distinguishes household members who assign and approve tasks from
// those who complete them.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// User represents a household member
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
