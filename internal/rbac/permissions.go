package rbac

const (
	ResourceSalaryComponent = "salary_component"
	ResourceSalaryTemplate  = "salary_template"
	ResourceEmployeeSalary  = "employee_salary"

	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
)

// DefaultPermissions is the permission catalogue seeded into the
// permissions table. Roles are granted a subset per company.
func DefaultPermissions() []PermissionRow {
	return []PermissionRow{
		{Resource: ResourceSalaryComponent, Action: ActionRead, Label: "View salary components", Category: "Payroll Setup"},
		{Resource: ResourceSalaryComponent, Action: ActionCreate, Label: "Create salary components", Category: "Payroll Setup"},
		{Resource: ResourceSalaryComponent, Action: ActionUpdate, Label: "Edit salary components", Category: "Payroll Setup"},
		{Resource: ResourceSalaryComponent, Action: ActionDelete, Label: "Delete salary components", Category: "Payroll Setup"},

		{Resource: ResourceSalaryTemplate, Action: ActionRead, Label: "View salary templates", Category: "Payroll Setup"},
		{Resource: ResourceSalaryTemplate, Action: ActionCreate, Label: "Create salary templates", Category: "Payroll Setup"},
		{Resource: ResourceSalaryTemplate, Action: ActionUpdate, Label: "Edit salary templates", Category: "Payroll Setup"},
		{Resource: ResourceSalaryTemplate, Action: ActionDelete, Label: "Delete salary templates", Category: "Payroll Setup"},
		{Resource: ResourceSalaryTemplate, Action: ActionExport, Label: "Export salary templates", Category: "Payroll Setup"},

		{Resource: ResourceEmployeeSalary, Action: ActionRead, Label: "View employee salaries", Category: "Compensation"},
		{Resource: ResourceEmployeeSalary, Action: ActionCreate, Label: "Assign employee salaries", Category: "Compensation"},
		{Resource: ResourceEmployeeSalary, Action: ActionUpdate, Label: "Revise employee salaries", Category: "Compensation"},
		{Resource: ResourceEmployeeSalary, Action: ActionDelete, Label: "Delete employee salaries", Category: "Compensation"},
	}
}
