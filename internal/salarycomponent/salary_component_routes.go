package salarycomponent

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService rbac.Service,
	jwtSecret string,
) {
	components := r.Group("/payroll/components")

	components.Use(middleware.AuthMiddleware(jwtSecret), middleware.ScopeLogger())

	{
		components.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryComponent, rbac.ActionRead), h.GetAll)
		components.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryComponent, rbac.ActionCreate), h.Create)
		components.POST("/import", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryComponent, rbac.ActionCreate), h.Import)
		components.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryComponent, rbac.ActionRead), h.GetById)
		components.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryComponent, rbac.ActionUpdate), h.Update)
		components.DELETE("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryComponent, rbac.ActionDelete), h.Delete)
	}
}
