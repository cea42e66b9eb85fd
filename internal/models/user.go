package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleSupport   Role = "SUPPORT"
	RoleDeveloper Role = "DEVELOPER"
	RoleClient    Role = "CLIENT"
)

func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch r {
	case RoleAdmin, RoleSupport, RoleDeveloper, RoleClient:
		return r, nil
	}
	return "", fmt.Errorf("invalid role: %q", raw)
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
	Token string `json:"token,omitempty"`
}

func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Scope selects which ticket list endpoint is queried.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeMine     Scope = "mine"
	ScopePersonal Scope = "personal"
	ScopeProject  Scope = "project"
)

func ParseScope(raw string) (Scope, error) {
	s := Scope(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case ScopeAll, ScopeMine, ScopePersonal, ScopeProject:
		return s, nil
	}
	return "", fmt.Errorf("invalid scope: %q (want all, mine, personal or project)", raw)
}

// DefaultScope mirrors the dashboard each role lands on: clients see the
// tickets they filed, developers the tickets assigned to them, support and
// admins the full queue.
func DefaultScope(u User) Scope {
	switch {
	case u.HasRole(RoleSupport), u.HasRole(RoleAdmin):
		return ScopeAll
	case u.HasRole(RoleDeveloper):
		return ScopePersonal
	case u.HasRole(RoleClient):
		return ScopeMine
	}
	return ScopeAll
}

type TicketQuery struct {
	Scope     Scope
	ProjectID int64
}
