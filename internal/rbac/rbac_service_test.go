package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	employeeRoles   map[string][]EmployeeRoleRow
	rolePermissions map[string][]RolePermissionRow
	permissions     []PermissionRow
	ensured         []PermissionRow
	rolesErr        error
}

func (m *mockRepo) GetEmployeeRoles(companyID string) ([]EmployeeRoleRow, error) {
	if m.rolesErr != nil {
		return nil, m.rolesErr
	}
	return m.employeeRoles[companyID], nil
}

func (m *mockRepo) GetRolePermissions(companyID string) ([]RolePermissionRow, error) {
	return m.rolePermissions[companyID], nil
}

func (m *mockRepo) ListPermissions() ([]PermissionRow, error) {
	return m.permissions, nil
}

func (m *mockRepo) EnsurePermissions(ctx context.Context, perms []PermissionRow) (int64, error) {
	m.ensured = perms
	return int64(len(perms)), nil
}

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	modelText := `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.dom == p.dom && r.obj == p.obj && r.act == p.act
`

	m, err := model.NewModelFromString(modelText)
	require.NoError(t, err)

	e, err := casbin.NewEnforcer(m)
	require.NoError(t, err)

	return e
}

func newRepoWithPolicies() *mockRepo {
	return &mockRepo{
		employeeRoles: map[string][]EmployeeRoleRow{
			"company-1": {{EmployeeID: "emp-1", RoleID: "role-payroll"}},
			"company-2": {{EmployeeID: "emp-2", RoleID: "role-viewer"}},
		},
		rolePermissions: map[string][]RolePermissionRow{
			"company-1": {
				{RoleID: "role-payroll", Resource: ResourceSalaryTemplate, Action: ActionRead},
				{RoleID: "role-payroll", Resource: ResourceSalaryTemplate, Action: ActionCreate},
			},
			"company-2": {
				{RoleID: "role-viewer", Resource: ResourceSalaryTemplate, Action: ActionRead},
			},
		},
	}
}

func TestRBACService_Enforce(t *testing.T) {
	svc := NewService(newRepoWithPolicies(), newTestEnforcer(t))

	require.NoError(t, svc.LoadCompanyPolicy("company-1"))

	allowed, err := svc.Enforce(EnforceRequest{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Resource:   ResourceSalaryTemplate,
		Action:     ActionCreate,
	})
	assert.NoError(t, err)
	assert.True(t, allowed)

	denied, err := svc.Enforce(EnforceRequest{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Resource:   ResourceEmployeeSalary,
		Action:     ActionDelete,
	})
	assert.NoError(t, err)
	assert.False(t, denied)
}

func TestRBACService_EnforceSwitchesCompany(t *testing.T) {
	svc := NewService(newRepoWithPolicies(), newTestEnforcer(t))

	allowed, err := svc.Enforce(EnforceRequest{EmployeeID: "emp-2", CompanyID: "company-2", Resource: ResourceSalaryTemplate, Action: ActionRead})
	require.NoError(t, err)
	assert.True(t, allowed)

	// emp-1's role belongs to company-1 only.
	allowed, err = svc.Enforce(EnforceRequest{EmployeeID: "emp-1", CompanyID: "company-2", Resource: ResourceSalaryTemplate, Action: ActionRead})
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRBACService_EnforceRepoError(t *testing.T) {
	repo := newRepoWithPolicies()
	repo.rolesErr = errors.New("db down")
	svc := NewService(repo, newTestEnforcer(t))

	allowed, err := svc.Enforce(EnforceRequest{EmployeeID: "emp-1", CompanyID: "company-1", Resource: ResourceSalaryTemplate, Action: ActionRead})
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestRBACService_SeedPermissions(t *testing.T) {
	repo := newRepoWithPolicies()
	svc := NewService(repo, newTestEnforcer(t))

	added, err := svc.SeedPermissions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(DefaultPermissions())), added)

	seen := map[string]bool{}
	for _, p := range repo.ensured {
		key := p.Resource + ":" + p.Action
		assert.False(t, seen[key], "duplicate permission %s", key)
		seen[key] = true
	}
	assert.True(t, seen["salary_template:export"])
}

func TestRBACService_ListPermissions(t *testing.T) {
	repo := newRepoWithPolicies()
	repo.permissions = []PermissionRow{{Resource: ResourceSalaryComponent, Action: ActionRead, Label: "View", Category: "Payroll Setup"}}
	svc := NewService(repo, newTestEnforcer(t))

	perms, err := svc.ListPermissions()
	require.NoError(t, err)
	assert.Equal(t, []PermissionResponse{{Resource: "salary_component", Action: "read", Label: "View", Category: "Payroll Setup"}}, perms)
}
