package salarytemplateerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrSalaryTemplateNotFound = apperror.New(
		apperror.CodeNotFound,
		"Salary template not found",
		http.StatusNotFound,
	)
	ErrSalaryTemplateNameExists = apperror.New(
		apperror.CodeConflict,
		"A salary template with this name already exists",
		http.StatusConflict,
	)
	ErrSalaryTemplateInUse = apperror.New(
		apperror.CodeConflict,
		"Salary template is assigned to employees and cannot be deleted",
		http.StatusConflict,
	)
	ErrInvalidSalaryTemplateID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid salary template id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrEmptyMappings = apperror.New(
		apperror.CodeInvalidInput,
		"a salary template needs at least one component mapping",
		http.StatusBadRequest,
	)
)
