package salarytemplate

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type SalaryTemplate struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_salary_template_name,priority:1,where:deleted_at IS NULL"`
	Name        string          `gorm:"size:255;not null;uniqueIndex:uq_salary_template_name,priority:2,where:deleted_at IS NULL"`
	Description string          `gorm:"type:text"`
	AnnualCTC   decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	Status      string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	CreatedBy   uuid.UUID       `gorm:"type:uuid"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`

	Mappings []SalaryTemplateMapping `gorm:"foreignKey:TemplateID"`
}

func (SalaryTemplate) TableName() string {
	return "salary_templates"
}

// SalaryTemplateMapping stores one line of the template together with the
// amounts computed when the template was saved.
type SalaryTemplateMapping struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TemplateID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ComponentID     int64           `gorm:"not null;index"`
	CalculationType string          `gorm:"type:varchar(20);not null"`
	Value           decimal.Decimal `gorm:"type:numeric(15,4);not null;default:0"`
	IsResidual      bool            `gorm:"not null;default:false"`
	MonthlyAmount   decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	AnnualAmount    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	Position        int             `gorm:"not null;default:0"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
}

func (SalaryTemplateMapping) TableName() string {
	return "salary_template_mappings"
}
