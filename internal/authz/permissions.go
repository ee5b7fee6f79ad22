package authz

// Base permissions guarding the admin panel. Each operation checks exactly
// one of these.
const (
	PermUserList   = "user-list"
	PermUserCreate = "user-create"
	PermUserEdit   = "user-edit"
	PermUserDelete = "user-delete"

	PermRoleList   = "role-list"
	PermRoleCreate = "role-create"
	PermRoleEdit   = "role-edit"
	PermRoleDelete = "role-delete"

	PermPermissionList   = "permission-list"
	PermPermissionCreate = "permission-create"
	PermPermissionEdit   = "permission-edit"
	PermPermissionDelete = "permission-delete"
)

// BasePermissions lists every permission the seeder provisions.
func BasePermissions() []string {
	return []string{
		PermUserList, PermUserCreate, PermUserEdit, PermUserDelete,
		PermRoleList, PermRoleCreate, PermRoleEdit, PermRoleDelete,
		PermPermissionList, PermPermissionCreate, PermPermissionEdit, PermPermissionDelete,
	}
}
