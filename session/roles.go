package session

// Platform roles, ordered by privilege.
const (
	RoleAdmin     = "admin"
	RoleEditor    = "editor"
	RoleWriter    = "writer"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

// writerRoles are the roles allowed to publish content.
var writerRoles = map[string]struct{}{
	RoleAdmin:  {},
	RoleEditor: {},
	RoleWriter: {},
}

// IsAdmin reports whether the cached profile has the admin role.
func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.Role == RoleAdmin
}

// IsWriter reports whether the cached profile may publish content.
func (s *Store) IsWriter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return false
	}
	_, ok := writerRoles[s.user.Role]
	return ok
}

// Permissions derives the permission set from the cached profile's role.
// An anonymous session has no permissions.
func (s *Store) Permissions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}

	var perms []string
	if s.user.Role == RoleAdmin {
		perms = append(perms, "admin")
	}
	if _, ok := writerRoles[s.user.Role]; ok {
		perms = append(perms, "write")
	}
	if s.user.Role == RoleModerator {
		perms = append(perms, "moderate")
	}
	return perms
}
