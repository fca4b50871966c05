package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is stored as an int and travels on the wire as its name.
type Role int

const (
	RoleTenant   Role = 0
	RoleLandlord Role = 1
	RoleAdmin    Role = 2
)

var roleNames = map[Role]string{
	RoleTenant:   "tenant",
	RoleLandlord: "landlord",
	RoleAdmin:    "admin",
}

var roleDashboards = map[Role]string{
	RoleTenant:   "dashboards/tenant.html",
	RoleLandlord: "dashboards/landlord.html",
	RoleAdmin:    "dashboards/admin.html",
}

func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for role, n := range roleNames {
		if n == name {
			return role, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Dashboard is the landing page for the role.
func (r Role) Dashboard() string {
	return roleDashboards[r]
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		var n int
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("role must be a name or number")
		}
		if !Role(n).Valid() {
			return fmt.Errorf("unknown role %d", n)
		}
		*r = Role(n)
		return nil
	}
	parsed, err := ParseRole(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UserSummary is the public face of a user inside other resources.
type UserSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}
