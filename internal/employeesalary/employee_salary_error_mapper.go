package employeesalary

import (
	"errors"

	employeesalaryerrors "go-payroll/internal/employeesalary/errors"
	"go-payroll/internal/shared/apperror"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeesalaryerrors.ErrEmployeeSalaryNotFound
	}

	if apperror.IsUniqueViolation(err, "uq_employee_salary_effective") {
		return employeesalaryerrors.ErrSalaryEffectiveDateAlreadyExists
	}

	return err
}
