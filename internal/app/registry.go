package app

import (
	"go-payroll/internal/employee"
	"go-payroll/internal/employeesalary"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/salarycomponent"
	"go-payroll/internal/salarytemplate"

	"github.com/gin-gonic/gin"
)

// services wires the domain services shared by the API and the consumer.
type services struct {
	components     salarycomponent.Service
	templates      salarytemplate.Service
	employeeSalary employeesalary.Service
}

func newServices(in *Infra) services {
	outboxRepo := kafka.NewOutboxRepository(in.SQLDB)

	components := salarycomponent.NewService(in.SQLDB, salarycomponent.NewRepository(in.GormDB), in.Redis, in.Logger)
	templates := salarytemplate.NewServiceWithOutbox(
		in.SQLDB,
		salarytemplate.NewRepository(in.GormDB),
		components,
		outboxRepo,
		in.Logger,
	)
	employeeSalary := employeesalary.NewServiceWithEmployees(
		in.SQLDB,
		employeesalary.NewRepository(in.GormDB),
		templates,
		employee.NewDirectory(employee.NewRepository(in.GormDB)),
		in.Logger,
	)

	return services{
		components:     components,
		templates:      templates,
		employeeSalary: employeeSalary,
	}
}

func newRBACService(in *Infra) (rbac.Service, error) {
	enforcer, err := infra.NewEnforcer(in.Config.RBACModelPath)
	if err != nil {
		return nil, err
	}
	return rbac.NewService(rbac.NewRepository(in.GormDB), enforcer, in.Logger), nil
}

func registerModules(router *gin.Engine, in *Infra) error {
	rbacService, err := newRBACService(in)
	if err != nil {
		return err
	}
	svc := newServices(in)
	secret := in.Config.JWTSecret

	// --- Handlers ---
	componentHandler := salarycomponent.NewHandler(svc.components, in.Logger)
	templateHandler := salarytemplate.NewHandlerWithRedis(svc.templates, in.Redis, in.Logger)
	employeeSalaryHandler := employeesalary.NewHandler(svc.employeeSalary)
	rbacHandler := rbac.NewHandler(rbacService, in.Logger)

	// --- Routes Registration ---
	api := router.Group("/api")
	{
		salarycomponent.RegisterRoutes(api, componentHandler, rbacService, secret)
		salarytemplate.RegisterRoutes(api, templateHandler, rbacService, secret, in.Config.RateLimit, in.Redis)
		employeesalary.RegisterRoutes(api, employeeSalaryHandler, rbacService, secret)
		rbac.RegisterRoutes(api, rbacHandler, secret)
	}

	return nil
}
