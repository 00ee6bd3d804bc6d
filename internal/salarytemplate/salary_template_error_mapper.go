package salarytemplate

import (
	"errors"

	salarytemplateerrors "go-payroll/internal/salarytemplate/errors"
	"go-payroll/internal/shared/apperror"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return salarytemplateerrors.ErrSalaryTemplateNotFound
	}

	if apperror.IsUniqueViolation(err, "uq_salary_template_name") {
		return salarytemplateerrors.ErrSalaryTemplateNameExists
	}

	return err
}
