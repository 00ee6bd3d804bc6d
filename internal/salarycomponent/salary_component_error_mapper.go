package salarycomponent

import (
	"errors"

	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"
	"go-payroll/internal/shared/apperror"

	"gorm.io/gorm"
)

const uniqueNameConstraint = "uq_salary_component_name"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return salarycomponenterrors.ErrSalaryComponentNotFound
	}

	if apperror.IsUniqueViolation(err, uniqueNameConstraint) {
		return salarycomponenterrors.ErrSalaryComponentNameExists
	}

	return err
}
