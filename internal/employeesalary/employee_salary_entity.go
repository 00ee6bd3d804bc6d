package employeesalary

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EmployeeSalary is one effective-dated salary of an employee. A revision
// adds a new row; older rows are kept as history.
type EmployeeSalary struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmployeeID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_employee_salary_effective,priority:1,where:deleted_at IS NULL"`
	TemplateID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	AnnualCTC       decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	MonthlyGross    decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	ReconciledToCTC bool            `gorm:"not null;default:true"`
	EffectiveDate   time.Time       `gorm:"type:date;not null;uniqueIndex:uq_employee_salary_effective,priority:2,where:deleted_at IS NULL"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt  `gorm:"index"`

	Components []EmployeeSalaryComponent `gorm:"foreignKey:EmployeeSalaryID"`
}

func (EmployeeSalary) TableName() string {
	return "employee_salaries"
}

// EmployeeSalaryComponent is the snapshot of one allocated line. Name and
// role are copied so payslips stay stable when the catalog changes.
type EmployeeSalaryComponent struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeSalaryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ComponentID      int64           `gorm:"not null"`
	ComponentName    string          `gorm:"size:255;not null"`
	Role             string          `gorm:"type:varchar(20);not null"`
	CalculationType  string          `gorm:"type:varchar(20);not null"`
	Value            decimal.Decimal `gorm:"type:numeric(15,4);not null;default:0"`
	MonthlyAmount    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	AnnualAmount     decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	Position         int             `gorm:"not null;default:0"`
}

func (EmployeeSalaryComponent) TableName() string {
	return "employee_salary_components"
}
