package employeesalary

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_salary_repo.go -destination=mock/employee_salary_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, salary *EmployeeSalary) error
	FindAllByCompany(ctx context.Context, companyID string, filter GetEmployeeSalariesFilter) ([]EmployeeSalary, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*EmployeeSalary, error)
	FindLatestByEmployee(ctx context.Context, companyID string, employeeID string) (*EmployeeSalary, error)
	FindCurrentByTemplate(ctx context.Context, companyID string, templateID string) ([]EmployeeSalary, error)
	UpdateAllocation(ctx context.Context, salary *EmployeeSalary) error
	Delete(ctx context.Context, companyID string, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return connection.Session(ctx, r.db, r.tx)
}

func orderedComponents(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *repository) Create(ctx context.Context, salary *EmployeeSalary) error {
	return r.conn(ctx).Create(salary).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter GetEmployeeSalariesFilter) ([]EmployeeSalary, error) {
	q := r.conn(ctx).Scopes(tenant.Scope(companyID))
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.TemplateID != "" {
		q = q.Where("template_id = ?", filter.TemplateID)
	}

	var salaries []EmployeeSalary
	err := q.
		Order("employee_id ASC").
		Order("effective_date DESC").
		Order("created_at DESC").
		Find(&salaries).Error
	return salaries, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*EmployeeSalary, error) {
	var salary EmployeeSalary
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Components", orderedComponents).
		First(&salary, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &salary, nil
}

// FindLatestByEmployee returns the employee's current salary, the row with
// the latest effective date.
func (r *repository) FindLatestByEmployee(ctx context.Context, companyID string, employeeID string) (*EmployeeSalary, error) {
	var salary EmployeeSalary
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("effective_date DESC").
		Order("created_at DESC").
		First(&salary).Error
	if err != nil {
		return nil, err
	}
	return &salary, nil
}

// FindCurrentByTemplate returns the salaries on the template that are still
// the latest effective row of their employee. Superseded rows are history
// and are never recalculated.
func (r *repository) FindCurrentByTemplate(ctx context.Context, companyID string, templateID string) ([]EmployeeSalary, error) {
	latest := r.conn(ctx).
		Table("employee_salaries AS x").
		Select("MAX(x.effective_date)").
		Where("x.employee_id = employee_salaries.employee_id").
		Where("x.company_id = employee_salaries.company_id").
		Where("x.deleted_at IS NULL")

	var salaries []EmployeeSalary
	err := r.conn(ctx).
		Scopes(tenant.ScopeTable("employee_salaries", companyID)).
		Where("employee_salaries.template_id = ?", templateID).
		Where("employee_salaries.effective_date = (?)", latest).
		Order("employee_id ASC").
		Find(&salaries).Error
	return salaries, err
}

// UpdateAllocation rewrites the totals and the component snapshot of an
// existing salary row.
func (r *repository) UpdateAllocation(ctx context.Context, salary *EmployeeSalary) error {
	db := r.conn(ctx)

	if err := db.Model(&EmployeeSalary{}).
		Where("id = ?", salary.ID).
		Updates(map[string]any{
			"monthly_gross":     salary.MonthlyGross,
			"reconciled_to_ctc": salary.ReconciledToCTC,
		}).Error; err != nil {
		return err
	}

	if err := db.Where("employee_salary_id = ?", salary.ID).Delete(&EmployeeSalaryComponent{}).Error; err != nil {
		return err
	}
	if len(salary.Components) == 0 {
		return nil
	}
	return db.Create(&salary.Components).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&EmployeeSalary{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
