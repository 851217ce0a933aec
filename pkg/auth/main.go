package auth

// Guard answers whether an actor holds the elevated capability. The admin
// role id is resolved once at startup and cached for the process lifetime,
// so checks are pure lookups with no I/O.
type Guard struct {
	AdminRoleID string
}

func New(adminRoleID string) Guard {
	return Guard{AdminRoleID: adminRoleID}
}

// IsPrivileged reports whether any of the actor's roles is the admin role.
func (g Guard) IsPrivileged(roleIDs []string) bool {
	if g.AdminRoleID == "" {
		return false
	}
	for _, id := range roleIDs {
		if id == g.AdminRoleID {
			return true
		}
	}
	return false
}
