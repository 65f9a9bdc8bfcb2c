package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is an authorization role held by a pet.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole rejects anything outside the known roles.
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role: %q", raw)
	}
}

// Authority is the role name as carried in access tokens.
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// Roles is a set of roles kept in insertion order.
type Roles []Role

// DefaultRoles is what every new pet starts with.
func DefaultRoles() Roles {
	return Roles{RoleUser}
}

// Contains reports whether role is in the set.
func (r Roles) Contains(role Role) bool {
	for _, have := range r {
		if have == role {
			return true
		}
	}
	return false
}

// Add returns the set with role included.
func (r Roles) Add(role Role) Roles {
	if r.Contains(role) {
		return r
	}
	return append(r, role)
}

// Authorities returns the token representation of every role.
func (r Roles) Authorities() []string {
	out := make([]string, 0, len(r))
	for _, role := range r {
		out = append(out, role.Authority())
	}
	return out
}

// Value implements driver.Valuer.
func (r Roles) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("roles must not be empty")
	}
	parts := make([]string, 0, len(r))
	for _, role := range r {
		parts = append(parts, string(role))
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner.
func (r *Roles) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*r = nil
		return nil
	default:
		return fmt.Errorf("scan roles: unsupported type %T", src)
	}

	var roles Roles
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, err := ParseRole(part)
		if err != nil {
			return err
		}
		roles = roles.Add(role)
	}
	*r = roles
	return nil
}
