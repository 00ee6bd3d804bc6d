package salaryengineerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidCTC = apperror.New(
		apperror.CodeInvalidInput,
		"annual_ctc must be a non-negative number",
		http.StatusBadRequest,
	)
	ErrInvalidMapping = apperror.New(
		apperror.CodeInvalidInput,
		"one or more salary component mappings are invalid",
		http.StatusBadRequest,
	)
)
