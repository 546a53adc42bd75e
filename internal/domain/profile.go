package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the hosted identity provider's user, extended with a role.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  *string   `json:"full_name,omitempty" db:"full_name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

func (p *Profile) Actor() Actor {
	return Actor{ID: p.ID, Role: p.Role, Name: p.DisplayName()}
}

// Actor is the authenticated identity an operation runs on behalf of. It is
// always passed explicitly; nothing reads it from request-scoped state.
type Actor struct {
	ID   uuid.UUID
	Role Role
	Name string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
