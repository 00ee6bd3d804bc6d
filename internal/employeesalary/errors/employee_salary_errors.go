package employeesalaryerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrEmployeeSalaryNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee salary not found",
		http.StatusNotFound,
	)
	ErrSalaryEffectiveDateAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Salary for this employee and effective date already exists",
		http.StatusConflict,
	)
	ErrRevisionNotAfterCurrent = apperror.New(
		apperror.CodeInvalidInput,
		"a salary revision must take effect after the salary it revises",
		http.StatusBadRequest,
	)
	ErrSalaryTemplateInactive = apperror.New(
		apperror.CodeInvalidInput,
		"inactive salary templates cannot be assigned",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeSalaryID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee salary id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidEffectiveDate = apperror.New(
		apperror.CodeInvalidInput,
		"effective_date must be formatted as YYYY-MM-DD",
		http.StatusBadRequest,
	)
)
