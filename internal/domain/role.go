package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleManager     Role = "MANAGER"
	RoleArchitect   Role = "ARCHITECT"
	RoleDeveloper   Role = "DEVELOPER"
	RoleStakeholder Role = "STAKEHOLDER"
)

var roles = []Role{RoleManager, RoleArchitect, RoleDeveloper, RoleStakeholder}

func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// Prefix is the short form used in session ids.
func (r Role) Prefix() string {
	switch r {
	case RoleManager:
		return "MGR"
	case RoleArchitect:
		return "ARCH"
	case RoleDeveloper:
		return "DEV"
	case RoleStakeholder:
		return "STAKE"
	default:
		return ""
	}
}

func (r Role) Valid() bool {
	return r.Prefix() != ""
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts the full role name or its prefix, in any case.
func ParseRole(raw string) (Role, error) {
	needle := strings.ToUpper(strings.TrimSpace(raw))
	for _, role := range roles {
		if needle == string(role) || needle == role.Prefix() {
			return role, nil
		}
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	return "", fmt.Errorf("%w: invalid role '%s'. Valid roles: %s", ErrInvalidInput, raw, strings.Join(names, ", "))
}

func roleFromPrefix(prefix string) (Role, bool) {
	for _, role := range roles {
		if role.Prefix() == prefix {
			return role, true
		}
	}
	return "", false
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, string(r))
	}
	return json.Marshal(string(r))
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}

	*r = parsed
	return nil
}
