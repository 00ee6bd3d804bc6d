package employeesalary

import (
	"context"
	"database/sql"
	"errors"
	"time"

	employeesalaryerrors "go-payroll/internal/employeesalary/errors"
	"go-payroll/internal/salaryengine"
	"go-payroll/internal/salarytemplate"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// TemplateAllocator applies a stored template to an employee's CTC; it is
// implemented by salarytemplate.Service.
type TemplateAllocator interface {
	AllocateCTC(ctx context.Context, companyID, templateID string, annualCTC decimal.Decimal) (salarytemplate.TemplateAllocation, error)
}

// EmployeeDirectory confirms an employee can be put on payroll.
type EmployeeDirectory interface {
	EnsurePayable(ctx context.Context, companyID, employeeID string) error
}

//go:generate mockgen -source=employee_salary_service.go -destination=mock/employee_salary_service_mock.go -package=mock
type Service interface {
	Assign(ctx context.Context, companyID, actorID string, req AssignEmployeeSalaryRequest) (EmployeeSalaryResponse, error)
	GetAll(ctx context.Context, companyID string, filter GetEmployeeSalariesFilter) ([]EmployeeSalaryResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeSalaryResponse, error)
	Update(ctx context.Context, companyID, actorID, id string, req ReviseEmployeeSalaryRequest) (EmployeeSalaryResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	// RecalculateByTemplate re-allocates every current salary on the
	// template and returns how many rows were rewritten.
	RecalculateByTemplate(ctx context.Context, companyID, templateID string) (int, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	templates TemplateAllocator
	employees EmployeeDirectory
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, templates TemplateAllocator, logger ...*zap.Logger) Service {
	l := zap.L().Named("employeesalary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employeesalary.service")
	}
	return &service{db: db, repo: repo, templates: templates, logger: l}
}

// NewServiceWithEmployees also checks the employee directory before a
// salary is assigned.
func NewServiceWithEmployees(
	db *sql.DB,
	repo Repository,
	templates TemplateAllocator,
	employees EmployeeDirectory,
	logger ...*zap.Logger,
) Service {
	svc := NewService(db, repo, templates, logger...).(*service)
	svc.employees = employees
	return svc
}

func (s *service) Assign(
	ctx context.Context,
	companyID, actorID string,
	req AssignEmployeeSalaryRequest,
) (EmployeeSalaryResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return EmployeeSalaryResponse{}, employeesalaryerrors.ErrInvalidEmployeeID
	}
	if s.employees != nil {
		if err := s.employees.EnsurePayable(ctx, companyID, req.EmployeeID); err != nil {
			return EmployeeSalaryResponse{}, err
		}
	}

	salary, alloc, err := s.allocateNew(ctx, companyID, actorID, req.TemplateID, req.AnnualCTC, req.EffectiveDate)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	salary.EmployeeID = employeeID

	if err := s.insert(ctx, salary); err != nil {
		return EmployeeSalaryResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("employee salary assigned",
		zap.String("company_id", companyID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("template_id", req.TemplateID),
		zap.String("annual_ctc", salary.AnnualCTC.StringFixed(2)),
	)

	return mapToDetailResponse(*salary, alloc), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
	filter GetEmployeeSalariesFilter,
) ([]EmployeeSalaryResponse, error) {
	salaries, err := s.repo.FindAllByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if filter.CurrentOnly {
		salaries = latestPerEmployee(salaries)
	}

	return mapToListResponse(salaries), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (EmployeeSalaryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeSalaryResponse{}, employeesalaryerrors.ErrInvalidEmployeeSalaryID
	}

	salary, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeSalaryResponse{}, mapRepositoryError(err)
	}

	resp := mapToResponse(*salary)
	resp.Components = mapComponents(salary.Components)
	return resp, nil
}

// Update revises a salary by inserting a new effective row; the revised row
// stays as history. The new row must take effect after the employee's
// current salary, whichever row is being revised.
func (s *service) Update(
	ctx context.Context,
	companyID, actorID, id string,
	req ReviseEmployeeSalaryRequest,
) (EmployeeSalaryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeSalaryResponse{}, employeesalaryerrors.ErrInvalidEmployeeSalaryID
	}

	current, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeSalaryResponse{}, mapRepositoryError(err)
	}

	templateID := req.TemplateID
	if templateID == "" {
		templateID = current.TemplateID.String()
	}

	salary, alloc, err := s.allocateNew(ctx, companyID, actorID, templateID, req.AnnualCTC, req.EffectiveDate)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	latest, err := s.latestSalary(ctx, companyID, current)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	if !salary.EffectiveDate.After(latest.EffectiveDate) {
		return EmployeeSalaryResponse{}, employeesalaryerrors.ErrRevisionNotAfterCurrent
	}
	salary.EmployeeID = current.EmployeeID

	if err := s.insert(ctx, salary); err != nil {
		return EmployeeSalaryResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("employee salary revised",
		zap.String("company_id", companyID),
		zap.String("employee_id", salary.EmployeeID.String()),
		zap.String("revised_id", id),
		zap.String("effective_date", salary.EffectiveDate.Format(dateLayout)),
	)

	return mapToDetailResponse(*salary, alloc), nil
}

// latestSalary is the employee's current row, or revised itself when the
// lookup finds nothing.
func (s *service) latestSalary(ctx context.Context, companyID string, revised *EmployeeSalary) (*EmployeeSalary, error) {
	latest, err := s.repo.FindLatestByEmployee(ctx, companyID, revised.EmployeeID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return revised, nil
		}
		return nil, mapRepositoryError(err)
	}
	if revised.EffectiveDate.After(latest.EffectiveDate) {
		return revised, nil
	}
	return latest, nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID, id string,
) error {
	if _, err := uuid.Parse(id); err != nil {
		return employeesalaryerrors.ErrInvalidEmployeeSalaryID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	return tx.Commit()
}

func (s *service) RecalculateByTemplate(
	ctx context.Context,
	companyID, templateID string,
) (int, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	salaries, err := s.repo.FindCurrentByTemplate(ctx, companyID, templateID)
	if err != nil {
		return 0, err
	}
	if len(salaries) == 0 {
		return 0, nil
	}

	// Allocate before opening the transaction; the allocator reads the
	// template and catalog outside of it.
	for i := range salaries {
		alloc, err := s.templates.AllocateCTC(ctx, companyID, templateID, salaries[i].AnnualCTC)
		if err != nil {
			return 0, err
		}
		applyAllocation(&salaries[i], alloc.Result)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	for i := range salaries {
		if err := qtx.UpdateAllocation(ctx, &salaries[i]); err != nil {
			log.Error("update employee salary allocation failed",
				zap.String("employee_salary_id", salaries[i].ID.String()),
				zap.Error(err),
			)
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(salaries), nil
}

// allocateNew builds an unsaved salary row from a template and CTC.
func (s *service) allocateNew(
	ctx context.Context,
	companyID, actorID, templateID string,
	rawCTC salaryengine.Value,
	rawDate string,
) (*EmployeeSalary, salarytemplate.TemplateAllocation, error) {
	var none salarytemplate.TemplateAllocation

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, none, employeesalaryerrors.ErrInvalidCompanyID
	}
	effectiveDate, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return nil, none, employeesalaryerrors.ErrInvalidEffectiveDate
	}
	ctc, err := salaryengine.ParseCTC(string(rawCTC))
	if err != nil {
		return nil, none, err
	}

	alloc, err := s.templates.AllocateCTC(ctx, companyID, templateID, ctc)
	if err != nil {
		return nil, none, err
	}
	if alloc.Status != salarytemplate.StatusActive {
		return nil, none, employeesalaryerrors.ErrSalaryTemplateInactive
	}

	salary := &EmployeeSalary{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		TemplateID:    uuid.MustParse(alloc.TemplateID),
		AnnualCTC:     alloc.Result.AnnualCTC,
		EffectiveDate: effectiveDate,
	}
	if actor, err := uuid.Parse(actorID); err == nil {
		salary.CreatedBy = actor
	}
	applyAllocation(salary, alloc.Result)

	return salary, alloc, nil
}

func (s *service) insert(ctx context.Context, salary *EmployeeSalary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, salary); err != nil {
		return mapRepositoryError(err)
	}

	return tx.Commit()
}

// applyAllocation copies an allocation into the salary row. Invalid lines
// carry no amount and are left out of the snapshot.
func applyAllocation(salary *EmployeeSalary, result salaryengine.Result) {
	salary.MonthlyGross = result.TotalMonthly
	salary.ReconciledToCTC = result.ReconciledToCTC

	components := make([]EmployeeSalaryComponent, 0, len(result.Lines))
	for _, line := range result.Lines {
		if line.Invalid {
			continue
		}
		components = append(components, EmployeeSalaryComponent{
			ID:               uuid.New(),
			EmployeeSalaryID: salary.ID,
			ComponentID:      line.ComponentID,
			ComponentName:    line.ComponentName,
			Role:             string(line.Role),
			CalculationType:  string(line.CalculationType),
			Value:            line.Value,
			MonthlyAmount:    line.MonthlyAmount,
			AnnualAmount:     line.AnnualAmount,
			Position:         len(components),
		})
	}
	salary.Components = components
}

// latestPerEmployee expects rows ordered by employee then effective date
// descending, as FindAllByCompany returns them.
func latestPerEmployee(salaries []EmployeeSalary) []EmployeeSalary {
	seen := make(map[uuid.UUID]struct{}, len(salaries))
	out := make([]EmployeeSalary, 0, len(salaries))
	for _, s := range salaries {
		if _, ok := seen[s.EmployeeID]; ok {
			continue
		}
		seen[s.EmployeeID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func mapToResponse(salary EmployeeSalary) EmployeeSalaryResponse {
	return EmployeeSalaryResponse{
		ID:              salary.ID.String(),
		EmployeeID:      salary.EmployeeID.String(),
		TemplateID:      salary.TemplateID.String(),
		AnnualCTC:       money(salary.AnnualCTC),
		MonthlyGross:    money(salary.MonthlyGross),
		ReconciledToCTC: salary.ReconciledToCTC,
		EffectiveDate:   salary.EffectiveDate.Format(dateLayout),
	}
}

func mapToDetailResponse(salary EmployeeSalary, alloc salarytemplate.TemplateAllocation) EmployeeSalaryResponse {
	resp := mapToResponse(salary)
	resp.TemplateName = alloc.TemplateName
	resp.Components = mapComponents(salary.Components)
	resp.Warnings = alloc.Result.Warnings
	return resp
}

func mapComponents(components []EmployeeSalaryComponent) []ComponentLineResponse {
	res := make([]ComponentLineResponse, len(components))
	for i, c := range components {
		res[i] = ComponentLineResponse{
			ComponentID:     c.ComponentID,
			ComponentName:   c.ComponentName,
			Role:            c.Role,
			CalculationType: c.CalculationType,
			Value:           money(c.Value),
			MonthlyAmount:   money(c.MonthlyAmount),
			AnnualAmount:    money(c.AnnualAmount),
		}
	}
	return res
}

func mapToListResponse(salaries []EmployeeSalary) []EmployeeSalaryResponse {
	res := make([]EmployeeSalaryResponse, len(salaries))
	for i, salary := range salaries {
		res[i] = mapToResponse(salary)
	}
	return res
}
