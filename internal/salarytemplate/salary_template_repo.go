package salarytemplate

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=salary_template_repo.go -destination=mock/salary_template_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, template *SalaryTemplate) error
	FindAllByCompany(ctx context.Context, companyID string, status string) ([]SalaryTemplate, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*SalaryTemplate, error)
	Update(ctx context.Context, template *SalaryTemplate) error
	ReplaceMappings(ctx context.Context, templateID uuid.UUID, mappings []SalaryTemplateMapping) error
	Delete(ctx context.Context, companyID string, id string) error
	CountAssignments(ctx context.Context, companyID string, id string) (int64, error)
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

func orderedMappings(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *repository) Create(ctx context.Context, template *SalaryTemplate) error {
	return r.conn(ctx).Create(template).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, status string) ([]SalaryTemplate, error) {
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Mappings", orderedMappings)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var templates []SalaryTemplate
	err := q.Order("name ASC").Find(&templates).Error
	return templates, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*SalaryTemplate, error) {
	var template SalaryTemplate
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Mappings", orderedMappings).
		First(&template, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *repository) Update(ctx context.Context, template *SalaryTemplate) error {
	return r.conn(ctx).Omit("Mappings").Save(template).Error
}

func (r *repository) ReplaceMappings(ctx context.Context, templateID uuid.UUID, mappings []SalaryTemplateMapping) error {
	db := r.conn(ctx)
	if err := db.Where("template_id = ?", templateID).Delete(&SalaryTemplateMapping{}).Error; err != nil {
		return err
	}
	if len(mappings) == 0 {
		return nil
	}
	return db.Create(&mappings).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&SalaryTemplate{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountAssignments(ctx context.Context, companyID string, id string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("employee_salaries").
		Scopes(tenant.Scope(companyID)).
		Where("template_id = ?", id).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}
