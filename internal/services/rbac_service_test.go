package services

import (
	"context"
	"testing"
	"time"

	"famledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Create(ctx context.Context, member *models.FamilyMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMembershipRepository) GetActive(ctx context.Context, familyID, userID uuid.UUID) (*models.FamilyMember, error) {
	args := m.Called(ctx, familyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FamilyMember), args.Error(1)
}

func (m *MockMembershipRepository) GetDefaultActive(ctx context.Context, userID uuid.UUID) (*models.FamilyMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FamilyMember), args.Error(1)
}

func (m *MockMembershipRepository) GetByFamilyAndUser(ctx context.Context, familyID, userID uuid.UUID) (*models.FamilyMember, error) {
	args := m.Called(ctx, familyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FamilyMember), args.Error(1)
}

func (m *MockMembershipRepository) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]*models.FamilyMember, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FamilyMember), args.Error(1)
}

func (m *MockMembershipRepository) UpdateStatus(ctx context.Context, familyID, id uuid.UUID, status string) error {
	args := m.Called(ctx, familyID, id, status)
	return args.Error(0)
}

func (m *MockMembershipRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMembershipRepository) SweepStaleInvites(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *models.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) GetByCode(ctx context.Context, familyID uuid.UUID, code string) (*models.Role, error) {
	args := m.Called(ctx, familyID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) Update(ctx context.Context, role *models.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) SetDisabled(ctx context.Context, familyID, id uuid.UUID, disabled bool) error {
	args := m.Called(ctx, familyID, id, disabled)
	return args.Error(0)
}

func (m *MockRoleRepository) SoftDelete(ctx context.Context, familyID, id uuid.UUID) error {
	args := m.Called(ctx, familyID, id)
	return args.Error(0)
}

func (m *MockRoleRepository) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]*models.Role, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) ListCodesByRole(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPermissionRepository) ListCodesByGlobalRoleCode(ctx context.Context, roleCode string) ([]string, error) {
	args := m.Called(ctx, roleCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockModuleRepository struct {
	mock.Mock
}

func (m *MockModuleRepository) ListActive(ctx context.Context) ([]*models.Module, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Module), args.Error(1)
}

type RBACServiceTestSuite struct {
	suite.Suite
	memberships *MockMembershipRepository
	roles       *MockRoleRepository
	permissions *MockPermissionRepository
	modules     *MockModuleRepository
	service     RBACService
	userID      uuid.UUID
	familyID    uuid.UUID
	roleID      uuid.UUID
	context     context.Context
}

func (suite *RBACServiceTestSuite) SetupTest() {
	suite.memberships = &MockMembershipRepository{}
	suite.roles = &MockRoleRepository{}
	suite.permissions = &MockPermissionRepository{}
	suite.modules = &MockModuleRepository{}
	suite.service = NewRBACService(suite.memberships, suite.roles, suite.permissions, suite.modules, []string{"OWNER", "ADMIN"})
	suite.userID = uuid.New()
	suite.familyID = uuid.New()
	suite.roleID = uuid.New()
	suite.context = context.Background()
}

func (suite *RBACServiceTestSuite) TearDownTest() {
	suite.memberships.AssertExpectations(suite.T())
	suite.roles.AssertExpectations(suite.T())
	suite.permissions.AssertExpectations(suite.T())
	suite.modules.AssertExpectations(suite.T())
}

func TestRBACServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RBACServiceTestSuite))
}

func (suite *RBACServiceTestSuite) membership() *models.FamilyMember {
	return &models.FamilyMember{
		ID:       uuid.New(),
		FamilyID: suite.familyID,
		UserID:   suite.userID,
		RoleID:   suite.roleID,
		Status:   models.MemberStatusActive,
		JoinedAt: time.Now(),
	}
}

func (suite *RBACServiceTestSuite) localRole(code string) *models.Role {
	return &models.Role{ID: suite.roleID, Code: code, Name: code, FamilyID: &suite.familyID}
}

func (suite *RBACServiceTestSuite) TestGetPermissions_NoMembership() {
	suite.memberships.On("GetActive", suite.context, suite.familyID, suite.userID).Return(nil, pgx.ErrNoRows)

	codes, err := suite.service.GetPermissions(suite.context, suite.userID, &suite.familyID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), codes)
}

func (suite *RBACServiceTestSuite) TestGetPermissions_DefaultFamilyFromMostRecentJoin() {
	suite.memberships.On("GetDefaultActive", suite.context, suite.userID).Return(suite.membership(), nil)
	suite.roles.On("GetByID", suite.context, suite.roleID).Return(suite.localRole("MEMBER"), nil)
	suite.permissions.On("ListCodesByRole", suite.context, suite.roleID).Return([]string{"fin:tag:read"}, nil)

	codes, err := suite.service.GetPermissions(suite.context, suite.userID, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"fin:tag:read"}, codes)
}

func (suite *RBACServiceTestSuite) TestGetPermissions_NonAllowListedRoleGetsLocalOnly() {
	// A same-coded global template exists, but MEMBER is not in the
	// allow-list, so it must never be consulted.
	suite.memberships.On("GetActive", suite.context, suite.familyID, suite.userID).Return(suite.membership(), nil)
	suite.roles.On("GetByID", suite.context, suite.roleID).Return(suite.localRole("MEMBER"), nil)
	suite.permissions.On("ListCodesByRole", suite.context, suite.roleID).Return([]string{"fin:tag:read"}, nil)

	codes, err := suite.service.GetPermissions(suite.context, suite.userID, &suite.familyID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"fin:tag:read"}, codes)
	suite.permissions.AssertNotCalled(suite.T(), "ListCodesByGlobalRoleCode", suite.context, "MEMBER")
}

func (suite *RBACServiceTestSuite) TestGetPermissions_AllowListedRoleInheritsGlobalGrants() {
	suite.memberships.On("GetActive", suite.context, suite.familyID, suite.userID).Return(suite.membership(), nil)
	suite.roles.On("GetByID", suite.context, suite.roleID).Return(suite.localRole("OWNER"), nil)
	suite.permissions.On("ListCodesByRole", suite.context, suite.roleID).Return([]string{"fin:tag:read"}, nil)
	suite.permissions.On("ListCodesByGlobalRoleCode", suite.context, "OWNER").Return([]string{"fin:tag:delete", "fin:tag:read"}, nil)

	codes, err := suite.service.GetPermissions(suite.context, suite.userID, &suite.familyID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"fin:tag:delete", "fin:tag:read"}, codes)
}

func (suite *RBACServiceTestSuite) TestGetPermissions_DisabledRoleContributesNothing() {
	role := suite.localRole("OWNER")
	role.IsDisabled = true
	suite.memberships.On("GetActive", suite.context, suite.familyID, suite.userID).Return(suite.membership(), nil)
	suite.roles.On("GetByID", suite.context, suite.roleID).Return(role, nil)

	codes, err := suite.service.GetPermissions(suite.context, suite.userID, &suite.familyID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), codes)
}

func (suite *RBACServiceTestSuite) TestGetPermissions_StoreErrorPropagates() {
	storeErr := assert.AnError
	suite.memberships.On("GetActive", suite.context, suite.familyID, suite.userID).Return(nil, storeErr)

	_, err := suite.service.GetPermissions(suite.context, suite.userID, &suite.familyID)
	assert.ErrorIs(suite.T(), err, storeErr)
}

func (suite *RBACServiceTestSuite) TestGetNav_FiltersAndOrders() {
	rootID := uuid.New()
	booksID := uuid.New()
	adminID := uuid.New()

	suite.memberships.On("GetActive", suite.context, suite.familyID, suite.userID).Return(suite.membership(), nil)
	suite.roles.On("GetByID", suite.context, suite.roleID).Return(suite.localRole("MEMBER"), nil)
	suite.permissions.On("ListCodesByRole", suite.context, suite.roleID).Return([]string{"fin:book:read"}, nil)
	suite.modules.On("ListActive", suite.context).Return([]*models.Module{
		{ID: rootID, Name: "Finance", RoutePath: "/finance", Sort: 1},
		{ID: booksID, ParentID: &rootID, Name: "Books", RoutePath: "/finance/books", PermissionCode: "fin:book:read", Sort: 2},
		{ID: adminID, ParentID: &rootID, Name: "Admin", RoutePath: "/finance/admin", PermissionCode: "fin:admin:read", Sort: 3},
	}, nil)

	nav, err := suite.service.GetNav(suite.context, suite.userID, &suite.familyID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), nav, 1)
	assert.Equal(suite.T(), "Finance", nav[0].Name)
	assert.Len(suite.T(), nav[0].Children, 1)
	assert.Equal(suite.T(), "Books", nav[0].Children[0].Name)
}

func (suite *RBACServiceTestSuite) TestGetNav_StructuralNodesAlwaysKept() {
	groupID := uuid.New()

	suite.memberships.On("GetActive", suite.context, suite.familyID, suite.userID).Return(suite.membership(), nil)
	suite.roles.On("GetByID", suite.context, suite.roleID).Return(suite.localRole("MEMBER"), nil)
	suite.permissions.On("ListCodesByRole", suite.context, suite.roleID).Return([]string{}, nil)
	suite.modules.On("ListActive", suite.context).Return([]*models.Module{
		{ID: groupID, Name: "Settings", RoutePath: "/settings", Sort: 1},
	}, nil)

	nav, err := suite.service.GetNav(suite.context, suite.userID, &suite.familyID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), nav, 1)
	assert.Equal(suite.T(), "Settings", nav[0].Name)
}

func (suite *RBACServiceTestSuite) TestGetNav_HiddenSectionHidesDescendants() {
	financeID := uuid.New()
	reportsID := uuid.New()
	annualID := uuid.New()
	settingsID := uuid.New()

	suite.memberships.On("GetActive", suite.context, suite.familyID, suite.userID).Return(suite.membership(), nil)
	suite.roles.On("GetByID", suite.context, suite.roleID).Return(suite.localRole("MEMBER"), nil)
	suite.permissions.On("ListCodesByRole", suite.context, suite.roleID).Return([]string{"fin:report:read"}, nil)
	suite.modules.On("ListActive", suite.context).Return([]*models.Module{
		{ID: financeID, Name: "Finance", RoutePath: "/finance", PermissionCode: "fin:section:read", Sort: 1},
		{ID: reportsID, ParentID: &financeID, Name: "Reports", RoutePath: "/finance/reports", Sort: 2},
		{ID: annualID, ParentID: &reportsID, Name: "Annual", RoutePath: "/finance/reports/annual", PermissionCode: "fin:report:read", Sort: 3},
		{ID: settingsID, Name: "Settings", RoutePath: "/settings", Sort: 4},
	}, nil)

	nav, err := suite.service.GetNav(suite.context, suite.userID, &suite.familyID)
	assert.NoError(suite.T(), err)
	// Finance is not granted, so Reports and Annual vanish with it even
	// though Annual's own code is granted.
	assert.Len(suite.T(), nav, 1)
	assert.Equal(suite.T(), "Settings", nav[0].Name)
}
