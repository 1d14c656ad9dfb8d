package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"subject": {
		"questionnaire:view",
		"session:start",
		"session:answer",
		"session:navigate",
		"session:submit",
		"indicator:record",
		"assessment:view-own",
	},
	"manager": {
		"questionnaire:create",
		"questionnaire:view",
		"assessment:view-all",
		"indicator:view",
		"dashboard:view",
		"users:bulk_upsert",
		"users:list",
	},
	"admin": {
		"*", // everything
	},
}
