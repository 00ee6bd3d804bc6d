package salarytemplate

import "go-payroll/internal/salaryengine"

type TemplateInput struct {
	Name        string             `json:"name" binding:"required,max=255"`
	Description string             `json:"description"`
	AnnualCTC   salaryengine.Value `json:"annual_ctc"`
	Status      string             `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

// MappingInput is one row of the template form. Value is kept as entered
// so a non-numeric value surfaces as an invalid-mapping warning instead of
// a decode failure.
type MappingInput struct {
	ComponentID     int64              `json:"component_id" binding:"required"`
	CalculationType string             `json:"calculation_type"`
	Value           salaryengine.Value `json:"value"`
	IsResidual      bool               `json:"is_residual"`
}

type SaveSalaryTemplateRequest struct {
	Template TemplateInput  `json:"template"`
	Mappings []MappingInput `json:"mappings" binding:"dive"`
}

type PreviewRequest struct {
	AnnualCTC salaryengine.Value `json:"annual_ctc"`
	Mappings  []MappingInput     `json:"mappings" binding:"dive"`
}

type GetSalaryTemplatesFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	Q      string `form:"q"`
}

type MappingResponse struct {
	ComponentID     int64  `json:"component_id"`
	ComponentName   string `json:"component_name"`
	Role            string `json:"role"`
	CalculationType string `json:"calculation_type"`
	Value           string `json:"value"`
	IsResidual      bool   `json:"is_residual"`
	MonthlyAmount   string `json:"monthly_amount"`
	AnnualAmount    string `json:"annual_amount"`
	Invalid         bool   `json:"invalid,omitempty"`
}

type AllocationResponse struct {
	AnnualCTC       string                 `json:"annual_ctc"`
	Mappings        []MappingResponse      `json:"mappings"`
	TotalAnnual     string                 `json:"total_annual"`
	TotalMonthly    string                 `json:"total_monthly"`
	ReconciledToCTC bool                   `json:"reconciled_to_ctc"`
	Warnings        []salaryengine.Warning `json:"warnings"`
}

type SalaryTemplateResponse struct {
	ID              string                 `json:"id"`
	CompanyID       string                 `json:"company_id"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description,omitempty"`
	AnnualCTC       string                 `json:"annual_ctc"`
	Status          string                 `json:"status"`
	CreatedBy       string                 `json:"created_by,omitempty"`
	MappingCount    int                    `json:"mapping_count"`
	Mappings        []MappingResponse      `json:"mappings,omitempty"`
	TotalAnnual     string                 `json:"total_annual,omitempty"`
	TotalMonthly    string                 `json:"total_monthly,omitempty"`
	ReconciledToCTC bool                   `json:"reconciled_to_ctc"`
	Warnings        []salaryengine.Warning `json:"warnings,omitempty"`
	CreatedAt       string                 `json:"created_at,omitempty"`
	UpdatedAt       string                 `json:"updated_at,omitempty"`
}

type ExportFile struct {
	FileName string
	Content  []byte
}
