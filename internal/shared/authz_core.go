package shared

// Permissions granted through roles.
const (
	PermDashboardView = "dashboard.view"

	PermStockView = "stock.view"
	PermStockEdit = "stock.edit"

	PermGRCView   = "grc.view"
	PermGRCEdit   = "grc.edit"
	PermGRCUpload = "grc.upload"

	PermComplaintsView = "complaints.view"

	PermEmployeesView = "employees.view"
	PermEmployeesEdit = "employees.edit"
)

// Roles known to the service desk.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// AllScopes lists every permission.
func AllScopes() []string {
	return []string{
		PermDashboardView,
		PermStockView,
		PermStockEdit,
		PermGRCView,
		PermGRCEdit,
		PermGRCUpload,
		PermComplaintsView,
		PermEmployeesView,
		PermEmployeesEdit,
	}
}

// UserScopes lists what a counter operator may do.
func UserScopes() []string {
	return []string{
		PermDashboardView,
		PermStockView,
		PermStockEdit,
		PermGRCView,
		PermGRCEdit,
		PermComplaintsView,
	}
}
