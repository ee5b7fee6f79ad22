package authz

import "sort"

// EffectivePermissions unions the permission grants of every role the user
// holds. Duplicates collapse and the result is sorted, so two users with the
// same grants always resolve to the same set.
func EffectivePermissions(roleGrants ...[]string) []string {
	seen := make(map[string]struct{})
	for _, grants := range roleGrants {
		for _, p := range grants {
			seen[p] = struct{}{}
		}
	}

	effective := make([]string, 0, len(seen))
	for p := range seen {
		effective = append(effective, p)
	}
	sort.Strings(effective)
	return effective
}

// HasPermission reports whether the permission is in the user's effective set.
func HasPermission(userPermissions []string, permission string) bool {
	for _, p := range userPermissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Capabilities maps action names to whether the principal may perform them.
// Listing handlers echo this so UI permission checks stay explicit.
func Capabilities(u *User, actions map[string]string) map[string]bool {
	can := make(map[string]bool, len(actions))
	for action, perm := range actions {
		can[action] = u != nil && HasPermission(u.Permissions, perm)
	}
	return can
}

// HasAnyPermission reports whether any required permission is held.
func HasAnyPermission(userPermissions []string, required []string) bool {
	for _, p := range required {
		if HasPermission(userPermissions, p) {
			return true
		}
	}
	return false
}
