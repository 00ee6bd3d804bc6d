package salarytemplate

import (
	"go-payroll/internal/config"
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService rbac.Service,
	jwtSecret string,
	limits config.RateLimitConfig,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	previewLimit := middleware.RateLimitByUser(rate.Limit(limits.PreviewRPS), limits.PreviewBurst)
	writeLimit := middleware.RateLimitByUser(rate.Limit(limits.WriteRPS), limits.WriteBurst)

	templates := r.Group("/payroll/templates")
	templates.Use(middleware.AuthMiddleware(jwtSecret), middleware.ScopeLogger())
	{
		templates.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTemplate, rbac.ActionRead), h.GetAll)
		templates.POST("/preview", previewLimit, middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTemplate, rbac.ActionRead), h.Preview)
		if redisClient != nil {
			templates.POST(
				"",
				writeLimit,
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTemplate, rbac.ActionCreate),
				h.Create,
			)
		} else {
			templates.POST("", writeLimit, middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTemplate, rbac.ActionCreate), h.Create)
		}
		templates.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTemplate, rbac.ActionRead), h.GetById)
		templates.GET("/:id/export", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTemplate, rbac.ActionExport), h.Export)
		templates.PUT("/:id", writeLimit, middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTemplate, rbac.ActionUpdate), h.Update)
		templates.DELETE("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTemplate, rbac.ActionDelete), h.Delete)
	}
}
