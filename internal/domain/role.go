package domain

// Role is the closed vocabulary of account roles.
type Role string

const (
	RoleUser     Role = "user"
	RoleEngineer Role = "engineer"
	RoleManager  Role = "manager"
	RoleDirector Role = "director"
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ValidRoles lists every assignable role.
var ValidRoles = []Role{RoleUser, RoleEngineer, RoleManager, RoleDirector, RoleCustomer, RoleAdmin}

// ParseRole maps a raw string onto the role vocabulary.
func ParseRole(s string) (Role, bool) {
	for _, role := range ValidRoles {
		if string(role) == s {
			return role, true
		}
	}
	return "", false
}

// Roles is a user's role collection. A nil slice means "no roles".
type Roles []Role

// Has reports whether the collection contains role.
func (r Roles) Has(role Role) bool {
	for _, candidate := range r {
		if candidate == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the collection contains at least one of
// required. An empty required set never matches.
func (r Roles) HasAny(required ...Role) bool {
	for _, role := range required {
		if r.Has(role) {
			return true
		}
	}
	return false
}

// Strings converts the collection for persistence.
func (r Roles) Strings() []string {
	out := make([]string, 0, len(r))
	for _, role := range r {
		out = append(out, string(role))
	}
	return out
}

// RolesFromStrings rebuilds a collection from stored values.
func RolesFromStrings(values []string) Roles {
	out := make(Roles, 0, len(values))
	for _, v := range values {
		out = append(out, Role(v))
	}
	return out
}
