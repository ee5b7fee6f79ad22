package events

// Actions published by the admin services. Resource names follow the
// permission group names.
const (
	ActionUserCreated = "user.created"
	ActionUserUpdated = "user.updated"
	ActionUserDeleted = "user.deleted"

	ActionRoleCreated = "role.created"
	ActionRoleUpdated = "role.updated"
	ActionRoleDeleted = "role.deleted"

	ActionPermissionCreated = "permission.created"
	ActionPermissionUpdated = "permission.updated"
	ActionPermissionDeleted = "permission.deleted"

	ActionUserLoggedIn = "auth.login"
)

const (
	ResourceUser       = "user"
	ResourceRole       = "role"
	ResourcePermission = "permission"
)
