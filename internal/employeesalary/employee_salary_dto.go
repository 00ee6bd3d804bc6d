package employeesalary

import "go-payroll/internal/salaryengine"

type AssignEmployeeSalaryRequest struct {
	EmployeeID    string             `json:"employee_id" binding:"required,uuid"`
	TemplateID    string             `json:"template_id" binding:"required,uuid"`
	AnnualCTC     salaryengine.Value `json:"annual_ctc"`
	EffectiveDate string             `json:"effective_date" binding:"required"`
}

// ReviseEmployeeSalaryRequest creates a new effective row from an existing
// one. An empty TemplateID keeps the template of the revised salary.
type ReviseEmployeeSalaryRequest struct {
	TemplateID    string             `json:"template_id" binding:"omitempty,uuid"`
	AnnualCTC     salaryengine.Value `json:"annual_ctc"`
	EffectiveDate string             `json:"effective_date" binding:"required"`
}

type GetEmployeeSalariesFilter struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	TemplateID string `form:"template_id" binding:"omitempty,uuid"`
	// CurrentOnly keeps the latest effective row of each employee.
	CurrentOnly bool `form:"current"`
}

type ComponentLineResponse struct {
	ComponentID     int64  `json:"component_id"`
	ComponentName   string `json:"component_name"`
	Role            string `json:"role"`
	CalculationType string `json:"calculation_type"`
	Value           string `json:"value"`
	MonthlyAmount   string `json:"monthly_amount"`
	AnnualAmount    string `json:"annual_amount"`
}

type EmployeeSalaryResponse struct {
	ID              string                  `json:"id"`
	EmployeeID      string                  `json:"employee_id"`
	TemplateID      string                  `json:"template_id"`
	TemplateName    string                  `json:"template_name,omitempty"`
	AnnualCTC       string                  `json:"annual_ctc"`
	MonthlyGross    string                  `json:"monthly_gross"`
	ReconciledToCTC bool                    `json:"reconciled_to_ctc"`
	EffectiveDate   string                  `json:"effective_date"`
	Components      []ComponentLineResponse `json:"components,omitempty"`
	Warnings        []salaryengine.Warning  `json:"warnings,omitempty"`
}
