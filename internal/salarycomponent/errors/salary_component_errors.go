package salarycomponenterrors

import (
	"go-payroll/internal/shared/apperror"
	"net/http"
)

var (
	ErrSalaryComponentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Salary component not found",
		http.StatusNotFound,
	)

	ErrSalaryComponentNameExists = apperror.New(
		apperror.CodeConflict,
		"A salary component with this name already exists",
		http.StatusConflict,
	)

	ErrInvalidSalaryComponentID = apperror.New(
		apperror.CodeInvalidInput,
		"Salary component id must be a positive integer",
		http.StatusBadRequest,
	)

	ErrInvalidSalaryComponentRole = apperror.New(
		apperror.CodeInvalidInput,
		"role must be one of ORDINARY, BASIC, RESIDUAL",
		http.StatusBadRequest,
	)

	ErrInvalidImportFile = apperror.New(
		apperror.CodeInvalidInput,
		"Salary component import file is invalid",
		http.StatusBadRequest,
	)
)
