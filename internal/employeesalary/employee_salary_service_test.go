package employeesalary_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-payroll/internal/employeesalary"
	employeesalaryerrors "go-payroll/internal/employeesalary/errors"
	"go-payroll/internal/salaryengine"
	salaryengineerrors "go-payroll/internal/salaryengine/errors"
	"go-payroll/internal/salarytemplate"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSalaryRepository struct {
	withTxFn                func(tx *sql.Tx) employeesalary.Repository
	createFn                func(ctx context.Context, salary *employeesalary.EmployeeSalary) error
	findAllByCompanyFn      func(ctx context.Context, companyID string, filter employeesalary.GetEmployeeSalariesFilter) ([]employeesalary.EmployeeSalary, error)
	findByIDAndCompanyFn    func(ctx context.Context, companyID string, id string) (*employeesalary.EmployeeSalary, error)
	findLatestByEmployeeFn  func(ctx context.Context, companyID string, employeeID string) (*employeesalary.EmployeeSalary, error)
	findCurrentByTemplateFn func(ctx context.Context, companyID string, templateID string) ([]employeesalary.EmployeeSalary, error)
	updateAllocationFn      func(ctx context.Context, salary *employeesalary.EmployeeSalary) error
	deleteFn                func(ctx context.Context, companyID string, id string) error
}

func (f *fakeSalaryRepository) WithTx(tx *sql.Tx) employeesalary.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeSalaryRepository) Create(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
	if f.createFn != nil {
		return f.createFn(ctx, salary)
	}
	return nil
}

func (f *fakeSalaryRepository) FindAllByCompany(ctx context.Context, companyID string, filter employeesalary.GetEmployeeSalariesFilter) ([]employeesalary.EmployeeSalary, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID, filter)
	}
	return nil, nil
}

func (f *fakeSalaryRepository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*employeesalary.EmployeeSalary, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSalaryRepository) FindLatestByEmployee(ctx context.Context, companyID string, employeeID string) (*employeesalary.EmployeeSalary, error) {
	if f.findLatestByEmployeeFn != nil {
		return f.findLatestByEmployeeFn(ctx, companyID, employeeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSalaryRepository) FindCurrentByTemplate(ctx context.Context, companyID string, templateID string) ([]employeesalary.EmployeeSalary, error) {
	if f.findCurrentByTemplateFn != nil {
		return f.findCurrentByTemplateFn(ctx, companyID, templateID)
	}
	return nil, nil
}

func (f *fakeSalaryRepository) UpdateAllocation(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
	if f.updateAllocationFn != nil {
		return f.updateAllocationFn(ctx, salary)
	}
	return nil
}

func (f *fakeSalaryRepository) Delete(ctx context.Context, companyID string, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, companyID, id)
	}
	return nil
}

// fakeAllocator splits the CTC into basic (50%) and a special allowance
// that absorbs the rest.
type fakeAllocator struct {
	templateID string
	status     string
	err        error
	calls      int
}

func (f *fakeAllocator) AllocateCTC(ctx context.Context, companyID, templateID string, ctc decimal.Decimal) (salarytemplate.TemplateAllocation, error) {
	f.calls++
	if f.err != nil {
		return salarytemplate.TemplateAllocation{}, f.err
	}

	result, err := salaryengine.Allocate(salaryengine.Request{
		AnnualCTC: ctc,
		Mappings: []salaryengine.Mapping{
			{ComponentID: 1, CalculationType: salaryengine.CalcPercentageCTC, Value: "50"},
			{ComponentID: 2, IsResidual: true},
		},
		Catalog: salaryengine.Catalog{
			{ID: 1, Name: "Basic", Role: salaryengine.RoleBasic},
			{ID: 2, Name: "Special Allowance", Role: salaryengine.RoleResidual},
		},
	})
	if err != nil {
		return salarytemplate.TemplateAllocation{}, err
	}

	return salarytemplate.TemplateAllocation{
		TemplateID:   f.templateID,
		TemplateName: "Grade A",
		Status:       f.status,
		Result:       result,
	}, nil
}

type serviceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	service    employeesalary.Service
	repo       *fakeSalaryRepository
	allocator  *fakeAllocator
	companyID  string
	templateID string
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	templateID := uuid.New().String()
	repo := &fakeSalaryRepository{}
	allocator := &fakeAllocator{templateID: templateID, status: salarytemplate.StatusActive}

	return &serviceDeps{
		db:         db,
		sqlMock:    sqlMock,
		service:    employeesalary.NewService(db, repo, allocator),
		repo:       repo,
		allocator:  allocator,
		companyID:  uuid.New().String(),
		templateID: templateID,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestEmployeeSalaryService_Assign(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("stores the allocation snapshot", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.repo.createFn = func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			assert.Equal(t, employeeID, salary.EmployeeID)
			assert.Equal(t, deps.templateID, salary.TemplateID.String())
			assert.Equal(t, "2026-04-01", salary.EffectiveDate.Format("2006-01-02"))
			assert.Equal(t, "100000", salary.MonthlyGross.String())
			require.Len(t, salary.Components, 2)
			assert.Equal(t, "Special Allowance", salary.Components[1].ComponentName)
			assert.Equal(t, "600000", salary.Components[1].AnnualAmount.String())
			assert.Equal(t, salary.ID, salary.Components[0].EmployeeSalaryID)
			return nil
		}

		resp, err := deps.service.Assign(ctx, deps.companyID, uuid.NewString(), employeesalary.AssignEmployeeSalaryRequest{
			EmployeeID:    employeeID.String(),
			TemplateID:    deps.templateID,
			AnnualCTC:     "1200000",
			EffectiveDate: "2026-04-01",
		})

		require.NoError(t, err)
		assert.Equal(t, "1200000.00", resp.AnnualCTC)
		assert.Equal(t, "100000.00", resp.MonthlyGross)
		assert.Equal(t, "Grade A", resp.TemplateName)
		assert.True(t, resp.ReconciledToCTC)
		assert.Len(t, resp.Components, 2)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("inactive template", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.allocator.status = salarytemplate.StatusInactive

		_, err := deps.service.Assign(ctx, deps.companyID, "", employeesalary.AssignEmployeeSalaryRequest{
			EmployeeID:    employeeID.String(),
			TemplateID:    deps.templateID,
			AnnualCTC:     "1200000",
			EffectiveDate: "2026-04-01",
		})

		assert.ErrorIs(t, err, employeesalaryerrors.ErrSalaryTemplateInactive)
	})

	t.Run("input errors", func(t *testing.T) {
		deps := setupServiceTest(t)
		base := employeesalary.AssignEmployeeSalaryRequest{
			EmployeeID:    employeeID.String(),
			TemplateID:    deps.templateID,
			AnnualCTC:     "1200000",
			EffectiveDate: "2026-04-01",
		}

		req := base
		req.EmployeeID = "nope"
		_, err := deps.service.Assign(ctx, deps.companyID, "", req)
		assert.ErrorIs(t, err, employeesalaryerrors.ErrInvalidEmployeeID)

		req = base
		req.EffectiveDate = "01/04/2026"
		_, err = deps.service.Assign(ctx, deps.companyID, "", req)
		assert.ErrorIs(t, err, employeesalaryerrors.ErrInvalidEffectiveDate)

		req = base
		req.AnnualCTC = "-10"
		_, err = deps.service.Assign(ctx, deps.companyID, "", req)
		assert.ErrorIs(t, err, salaryengineerrors.ErrInvalidCTC)

		assert.Zero(t, deps.allocator.calls)
	})

	t.Run("duplicate effective date", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.createFn = func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_salary_effective"}
		}

		_, err := deps.service.Assign(ctx, deps.companyID, "", employeesalary.AssignEmployeeSalaryRequest{
			EmployeeID:    employeeID.String(),
			TemplateID:    deps.templateID,
			AnnualCTC:     "1200000",
			EffectiveDate: "2026-04-01",
		})

		assert.ErrorIs(t, err, employeesalaryerrors.ErrSalaryEffectiveDateAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

type fakeEmployeeDirectory struct {
	err error
}

func (f *fakeEmployeeDirectory) EnsurePayable(ctx context.Context, companyID, employeeID string) error {
	return f.err
}

func TestEmployeeSalaryService_AssignChecksEmployee(t *testing.T) {
	ctx := context.Background()
	notFound := errors.New("employee not found")

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	allocator := &fakeAllocator{templateID: uuid.NewString(), status: salarytemplate.StatusActive}
	repo := &fakeSalaryRepository{createFn: func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
		t.Fatal("create must not be called")
		return nil
	}}
	svc := employeesalary.NewServiceWithEmployees(db, repo, allocator, &fakeEmployeeDirectory{err: notFound})

	_, err = svc.Assign(ctx, uuid.NewString(), "", employeesalary.AssignEmployeeSalaryRequest{
		EmployeeID:    uuid.NewString(),
		TemplateID:    allocator.templateID,
		AnnualCTC:     "1200000",
		EffectiveDate: "2026-04-01",
	})

	assert.ErrorIs(t, err, notFound)
	assert.Zero(t, allocator.calls)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestEmployeeSalaryService_Update(t *testing.T) {
	ctx := context.Background()

	current := func(deps *serviceDeps) *employeesalary.EmployeeSalary {
		return &employeesalary.EmployeeSalary{
			ID:            uuid.New(),
			EmployeeID:    uuid.New(),
			TemplateID:    uuid.MustParse(deps.templateID),
			AnnualCTC:     decimal.NewFromInt(1200000),
			EffectiveDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	t.Run("adds a new effective row", func(t *testing.T) {
		deps := setupServiceTest(t)
		existing := current(deps)
		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*employeesalary.EmployeeSalary, error) {
			return existing, nil
		}
		deps.repo.createFn = func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			assert.NotEqual(t, existing.ID, salary.ID)
			assert.Equal(t, existing.EmployeeID, salary.EmployeeID)
			assert.Equal(t, "1500000", salary.AnnualCTC.String())
			return nil
		}

		resp, err := deps.service.Update(ctx, deps.companyID, "", existing.ID.String(), employeesalary.ReviseEmployeeSalaryRequest{
			AnnualCTC:     "1500000",
			EffectiveDate: "2027-04-01",
		})

		require.NoError(t, err)
		assert.Equal(t, "125000.00", resp.MonthlyGross)
		assert.Equal(t, "2027-04-01", resp.EffectiveDate)
	})

	t.Run("revision must be later", func(t *testing.T) {
		deps := setupServiceTest(t)
		existing := current(deps)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*employeesalary.EmployeeSalary, error) {
			return existing, nil
		}

		_, err := deps.service.Update(ctx, deps.companyID, "", existing.ID.String(), employeesalary.ReviseEmployeeSalaryRequest{
			AnnualCTC:     "1500000",
			EffectiveDate: "2026-04-01",
		})

		assert.ErrorIs(t, err, employeesalaryerrors.ErrRevisionNotAfterCurrent)
	})

	t.Run("revising history must be later than the current salary", func(t *testing.T) {
		deps := setupServiceTest(t)
		history := current(deps)
		latest := *history
		latest.ID = uuid.New()
		latest.EffectiveDate = time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*employeesalary.EmployeeSalary, error) {
			return history, nil
		}
		deps.repo.findLatestByEmployeeFn = func(ctx context.Context, companyID, employeeID string) (*employeesalary.EmployeeSalary, error) {
			assert.Equal(t, history.EmployeeID.String(), employeeID)
			return &latest, nil
		}
		deps.repo.createFn = func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			t.Fatal("create must not be called")
			return nil
		}

		_, err := deps.service.Update(ctx, deps.companyID, "", history.ID.String(), employeesalary.ReviseEmployeeSalaryRequest{
			AnnualCTC:     "1500000",
			EffectiveDate: "2026-10-01",
		})

		assert.ErrorIs(t, err, employeesalaryerrors.ErrRevisionNotAfterCurrent)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("lookup failure", func(t *testing.T) {
		deps := setupServiceTest(t)
		existing := current(deps)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*employeesalary.EmployeeSalary, error) {
			return existing, nil
		}
		deps.repo.findLatestByEmployeeFn = func(ctx context.Context, companyID, employeeID string) (*employeesalary.EmployeeSalary, error) {
			return nil, errors.New("db down")
		}

		_, err := deps.service.Update(ctx, deps.companyID, "", existing.ID.String(), employeesalary.ReviseEmployeeSalaryRequest{
			AnnualCTC:     "1500000",
			EffectiveDate: "2027-04-01",
		})

		assert.EqualError(t, err, "db down")
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, err := deps.service.Update(ctx, deps.companyID, "", uuid.NewString(), employeesalary.ReviseEmployeeSalaryRequest{
			AnnualCTC:     "1",
			EffectiveDate: "2027-01-01",
		})
		assert.ErrorIs(t, err, employeesalaryerrors.ErrEmployeeSalaryNotFound)
	})
}

func TestEmployeeSalaryService_GetAll(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	emp := uuid.New()
	other := uuid.New()

	deps.repo.findAllByCompanyFn = func(ctx context.Context, companyID string, filter employeesalary.GetEmployeeSalariesFilter) ([]employeesalary.EmployeeSalary, error) {
		return []employeesalary.EmployeeSalary{
			{ID: uuid.New(), EmployeeID: emp, EffectiveDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
			{ID: uuid.New(), EmployeeID: emp, EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
			{ID: uuid.New(), EmployeeID: other, EffectiveDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		}, nil
	}

	all, err := deps.service.GetAll(ctx, deps.companyID, employeesalary.GetEmployeeSalariesFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	current, err := deps.service.GetAll(ctx, deps.companyID, employeesalary.GetEmployeeSalariesFilter{CurrentOnly: true})
	require.NoError(t, err)
	require.Len(t, current, 2)
	assert.Equal(t, "2027-01-01", current[0].EffectiveDate)
	assert.Equal(t, other.String(), current[1].EmployeeID)
}

func TestEmployeeSalaryService_RecalculateByTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites every current salary", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.repo.findCurrentByTemplateFn = func(ctx context.Context, companyID, templateID string) ([]employeesalary.EmployeeSalary, error) {
			assert.Equal(t, deps.templateID, templateID)
			return []employeesalary.EmployeeSalary{
				{ID: uuid.New(), AnnualCTC: decimal.NewFromInt(1200000)},
				{ID: uuid.New(), AnnualCTC: decimal.NewFromInt(600000)},
			}, nil
		}
		var gross []string
		deps.repo.updateAllocationFn = func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			gross = append(gross, salary.MonthlyGross.String())
			assert.Len(t, salary.Components, 2)
			return nil
		}

		n, err := deps.service.RecalculateByTemplate(ctx, deps.companyID, deps.templateID)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"100000", "50000"}, gross)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("nothing assigned", func(t *testing.T) {
		deps := setupServiceTest(t)
		n, err := deps.service.RecalculateByTemplate(ctx, deps.companyID, deps.templateID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("update failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findCurrentByTemplateFn = func(ctx context.Context, companyID, templateID string) ([]employeesalary.EmployeeSalary, error) {
			return []employeesalary.EmployeeSalary{{ID: uuid.New(), AnnualCTC: decimal.NewFromInt(1000)}}, nil
		}
		deps.repo.updateAllocationFn = func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			return errors.New("db down")
		}

		_, err := deps.service.RecalculateByTemplate(ctx, deps.companyID, deps.templateID)

		assert.EqualError(t, err, "db down")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("allocation failure", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.allocator.err = errors.New("template gone")
		deps.repo.findCurrentByTemplateFn = func(ctx context.Context, companyID, templateID string) ([]employeesalary.EmployeeSalary, error) {
			return []employeesalary.EmployeeSalary{{ID: uuid.New()}}, nil
		}

		_, err := deps.service.RecalculateByTemplate(ctx, deps.companyID, deps.templateID)
		assert.EqualError(t, err, "template gone")
	})
}

func TestEmployeeSalaryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		assert.NoError(t, deps.service.Delete(ctx, deps.companyID, uuid.NewString()))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.deleteFn = func(ctx context.Context, companyID, id string) error {
			return gorm.ErrRecordNotFound
		}
		err := deps.service.Delete(ctx, deps.companyID, uuid.NewString())
		assert.ErrorIs(t, err, employeesalaryerrors.ErrEmployeeSalaryNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)
		err := deps.service.Delete(ctx, deps.companyID, "1")
		assert.ErrorIs(t, err, employeesalaryerrors.ErrInvalidEmployeeSalaryID)
	})
}
