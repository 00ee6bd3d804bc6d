package salarycomponent

import (
	"context"
	"database/sql"
	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=salary_component_repo.go -destination=mock/salary_component_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, component *SalaryComponent) error
	FindAllByCompany(ctx context.Context, companyID string) ([]SalaryComponent, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id int64) (*SalaryComponent, error)
	Update(ctx context.Context, component *SalaryComponent) error
	Delete(ctx context.Context, companyID string, id int64) error
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

func (r *repository) Create(ctx context.Context, component *SalaryComponent) error {
	return r.conn(ctx).Create(component).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]SalaryComponent, error) {
	var components []SalaryComponent
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("id ASC").
		Find(&components).Error
	return components, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id int64) (*SalaryComponent, error) {
	var component SalaryComponent
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&component).Error
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *repository) Update(ctx context.Context, component *SalaryComponent) error {
	return r.conn(ctx).Save(component).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id int64) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Delete(&SalaryComponent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
