package domain

import "fmt"

// Role is the per-group standing of a member.
// Mute is reported as a role but stored as an overlay on top of the base role.
type Role uint8

const (
	RoleUser Role = iota
	RoleCoAdmin
	RoleAdmin
	RoleMute
)

var roleNames = [...]string{
	RoleUser:    "USER",
	RoleCoAdmin: "COADMIN",
	RoleAdmin:   "ADMIN",
	RoleMute:    "MUTE",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Privileged reports whether the role may manage other members.
func (r Role) Privileged() bool { return r == RoleAdmin || r == RoleCoAdmin }

// Member represents user's participation meta for a group.
// No transport or lifecycle logic here.
type Member struct {
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Muted bool   `json:"muted,omitempty"`
}
