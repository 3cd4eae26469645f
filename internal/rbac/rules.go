package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"test:view",
		"attempt:submit",
		"review:rebuild",
		"review:submit",
		"result:view-own",
		"stats:view-own",
	},
	"admin": {
		"*", // everything
	},
}
