package salarycomponent

type CreateSalaryComponentRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Code        string `json:"code" binding:"max=50"`
	Role        string `json:"role" binding:"omitempty,oneof=ORDINARY BASIC RESIDUAL"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateSalaryComponentRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Code        string `json:"code" binding:"max=50"`
	Role        string `json:"role" binding:"omitempty,oneof=ORDINARY BASIC RESIDUAL"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type SalaryComponentResponse struct {
	ID          int64  `json:"id"`
	CompanyID   string `json:"company_id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Role        string `json:"role"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// ImportItem is one entry of a catalog import file.
type ImportItem struct {
	Name        string `yaml:"name" json:"name"`
	Code        string `yaml:"code" json:"code"`
	Role        string `yaml:"role,omitempty" json:"role,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type ImportResult struct {
	Created []SalaryComponentResponse `json:"created"`
	Skipped []string                  `json:"skipped"`
}
