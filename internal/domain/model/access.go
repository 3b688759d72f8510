package model

// Permission identifiers.
const (
	PermManageUsers     = "manage_users"
	PermManageSettings  = "manage_settings"
	PermViewReports     = "view_reports"
	PermManageSales     = "manage_sales"
	PermManageProducts  = "manage_products"
	PermManageCustomers = "manage_customers"
	PermViewDashboard   = "view_dashboard"
)

// Module identifiers.
const (
	ModuleDashboard = "dashboard"
	ModuleSales     = "sales"
	ModuleProducts  = "products"
	ModuleCustomers = "customers"
	ModuleReports   = "reports"
	ModuleUsers     = "users"
	ModuleSettings  = "settings"
	ModuleFinancial = "financial"
)

// RolePermissions and RoleModules are the static access tables. Each row is
// an independent enumerated set: super and admin overlap but neither is
// derived from the other, so the literal lists must not be collapsed into a
// hierarchy. Validated against Roles at startup by the access service.
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermManageUsers,
		PermManageSettings,
		PermViewReports,
		PermManageSales,
		PermManageProducts,
		PermManageCustomers,
		PermViewDashboard,
	},
	RoleSuper: {
		PermViewReports,
		PermManageSales,
		PermManageProducts,
		PermManageCustomers,
		PermViewDashboard,
	},
	RoleUser: {
		PermManageSales,
		PermViewDashboard,
	},
}

var RoleModules = map[string][]string{
	RoleAdmin: {
		ModuleDashboard,
		ModuleSales,
		ModuleProducts,
		ModuleCustomers,
		ModuleReports,
		ModuleUsers,
		ModuleSettings,
		ModuleFinancial,
	},
	RoleSuper: {
		ModuleDashboard,
		ModuleSales,
		ModuleProducts,
		ModuleCustomers,
		ModuleReports,
		ModuleFinancial,
	},
	RoleUser: {
		ModuleDashboard,
		ModuleSales,
	},
}
