package domain

import (
	"slices"
	"strings"
	"time"
)

// Role is a portal authorization tag. RoleStudent and RoleAdmin are the tags this
// service acts on; identities may carry others assigned elsewhere.
type Role string

const (
	RoleStudent Role = "ROLE_STUDENT"
	RoleAdmin   Role = "ROLE_ADMIN"

	// RoleUser is reported at login when an identity carries no roles. This service never
	// assigns it.
	RoleUser Role = "ROLE_USER"
)

// RoleSetFromStrings builds a RoleSet from stored tags. Tags this service does not
// define are kept so that saving the identity back does not drop them.
func RoleSetFromStrings(tags []string) RoleSet {
	set := make(RoleSet, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		set = set.With(Role(t))
	}
	return set
}

// RoleSet is a sorted, duplicate-free set of roles.
type RoleSet []Role

// NewRoleSet builds a RoleSet from roles in any order.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		set = set.With(r)
	}
	return set
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	_, found := slices.BinarySearch(s, r)
	return found
}

// With returns a set that also contains r. The receiver is not modified.
func (s RoleSet) With(r Role) RoleSet {
	i, found := slices.BinarySearch(s, r)
	if found {
		return s
	}
	out := make(RoleSet, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, r)
	return append(out, s[i:]...)
}

// Primary returns the first role in sorted order, or RoleUser for an empty set.
func (s RoleSet) Primary() Role {
	if len(s) == 0 {
		return RoleUser
	}
	return s[0]
}

// Strings returns the roles as plain strings.
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

// User models a portal identity. It is linked to a Student record by email.
type User struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Roles              RoleSet   `json:"roles"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
