package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the subset of the HR employees table payroll reads.
type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID `gorm:"type:uuid;index"`
	EmployeeNumber string
	FullName       string
	Email          string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
