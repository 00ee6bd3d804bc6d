package employee

import (
	"context"
	"errors"

	employeeerrors "go-payroll/internal/employee/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Directory answers whether an employee can be put on payroll.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// EnsurePayable returns nil when employeeID names an active employee of
// companyID.
func (d *Directory) EnsurePayable(ctx context.Context, companyID, employeeID string) error {
	if _, err := uuid.Parse(employeeID); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	emp, err := d.repo.FindByIDAndCompany(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return employeeerrors.ErrEmployeeNotFound
		}
		return err
	}
	if !emp.IsActive {
		return employeeerrors.ErrEmployeeInactive
	}
	return nil
}
