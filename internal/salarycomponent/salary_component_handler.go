package salarycomponent

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("salarycomponent.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarycomponent.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("salary component request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, salarycomponenterrors.ErrInvalidSalaryComponentID
	}
	return id, nil
}

func (h *Handler) Create(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req CreateSalaryComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

// GetAll supports ?q= (name or code), ?role=, ?active=true|false and
// page/page_size.
func (h *Handler) GetAll(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetAll(c.Request.Context(), companyID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	role := strings.ToUpper(strings.TrimSpace(c.Query("role")))
	active := strings.TrimSpace(c.Query("active"))

	filtered := make([]SalaryComponentResponse, 0, len(resp))
	for _, sc := range resp {
		if q != "" && !strings.Contains(strings.ToLower(sc.Name), q) && !strings.Contains(strings.ToLower(sc.Code), q) {
			continue
		}
		if role != "" && sc.Role != role {
			continue
		}
		if active != "" && strconv.FormatBool(sc.IsActive) != active {
			continue
		}
		filtered = append(filtered, sc)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
	})

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	items, meta := response.Paginate(filtered, page, pageSize)

	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), c.GetString("company_id"), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req UpdateSalaryComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), c.GetString("company_id"), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.GetString("company_id"), id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id}, nil)
}

// Import accepts a YAML catalog body (see ParseImportFile).
func (h *Handler) Import(c *gin.Context) {
	items, err := ParseImportFile(c.Request.Body)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	result, err := h.service.Import(c.Request.Context(), c.GetString("company_id"), items)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result, nil)
}
