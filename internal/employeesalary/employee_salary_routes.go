package employeesalary

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	jwtSecret string,
) {
	salaries := r.Group("/employee-salaries")
	salaries.Use(middleware.AuthMiddleware(jwtSecret), middleware.ScopeLogger())
	{
		salaries.GET("",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployeeSalary, rbac.ActionRead),
			handler.GetAll,
		)
		salaries.GET("/:id",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployeeSalary, rbac.ActionRead),
			handler.GetById,
		)
		salaries.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployeeSalary, rbac.ActionCreate),
			handler.Assign,
		)
		salaries.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployeeSalary, rbac.ActionUpdate),
			handler.Update,
		)
		salaries.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployeeSalary, rbac.ActionDelete),
			handler.Delete,
		)
	}
}
