package salarycomponent

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalaryComponent struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	CompanyID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_salary_component_name,priority:1"`
	Name        string         `gorm:"size:255;not null;uniqueIndex:uq_salary_component_name,priority:2"`
	Code        string         `gorm:"size:50"`
	Role        string         `gorm:"size:20;not null;default:ORDINARY"`
	Description string         `gorm:"type:text"`
	IsActive    bool           `gorm:"not null;default:true"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (SalaryComponent) TableName() string {
	return "salary_components"
}
