package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/stretchr/testify/suite"
)

type PrincipalServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	world     *world
	identity  portssvc.IdentityProvider
	employees portssvc.PrincipalSvcFacade
}

func (suite *PrincipalServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.world = newWorld(suite.T())
	suite.identity = services.NewPasswordIdentityProvider(suite.world.store, 0)
	suite.employees = services.NewPrincipalService(suite.world.store, suite.world.store, suite.identity,
		services.WithPrincipalAuthorizer(services.NewAuthorizationService(suite.world.store)))
}

func (suite *PrincipalServiceTestSuite) TestCreateEmployee() {
	emp, err := suite.employees.CreateEmployee(suite.ctx, suite.world.manager, dto.CreateEmployeeRequest{
		Name: "Huda", Email: "Huda@Agency.example", Password: "s3cret-pass", PermissionGroupID: clerkGroupID,
	})
	suite.Require().NoError(err)
	suite.Equal("huda@agency.example", emp.Email)
	suite.True(emp.Active)
	suite.Equal("manager", emp.CreatedBy)

	identityID, err := suite.identity.VerifyCredential(suite.ctx, "huda@agency.example", "s3cret-pass")
	suite.Require().NoError(err)
	suite.Equal(emp.IdentityID, identityID)

	_, err = suite.employees.CreateEmployee(suite.ctx, suite.world.manager, dto.CreateEmployeeRequest{
		Name: "Huda 2", Email: "HUDA@agency.example", Password: "s3cret-pass", PermissionGroupID: clerkGroupID,
	})
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *PrincipalServiceTestSuite) TestCreateEmployee_AdminGroupNeedsSettingsEdit() {
	_, err := suite.employees.CreateEmployee(suite.ctx, suite.world.manager, dto.CreateEmployeeRequest{
		Name: "Mona", Email: "mona@agency.example", Password: "s3cret-pass", PermissionGroupID: adminGroupID,
	})
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.employees.CreateEmployee(suite.ctx, suite.world.admin, dto.CreateEmployeeRequest{
		Name: "Mona", Email: "mona@agency.example", Password: "s3cret-pass", PermissionGroupID: adminGroupID,
	})
	suite.NoError(err)
}

func (suite *PrincipalServiceTestSuite) TestCreateEmployee_UnknownGroup() {
	_, err := suite.employees.CreateEmployee(suite.ctx, suite.world.admin, dto.CreateEmployeeRequest{
		Name: "Mona", Email: "mona@agency.example", Password: "s3cret-pass", PermissionGroupID: "grp-missing",
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PrincipalServiceTestSuite) TestUpdateEmployee_GroupChangeNeedsSettingsEdit() {
	group := viewerGroupID
	_, err := suite.employees.UpdateEmployee(suite.ctx, suite.world.manager, suite.world.clerk.ID, dto.UpdateEmployeeRequest{PermissionGroupID: &group})
	suite.ErrorIs(err, apperrors.ErrForbidden)

	name := "Clerk Renamed"
	updated, err := suite.employees.UpdateEmployee(suite.ctx, suite.world.manager, suite.world.clerk.ID, dto.UpdateEmployeeRequest{Name: &name})
	suite.Require().NoError(err)
	suite.Equal("Clerk Renamed", updated.Name)

	updated, err = suite.employees.UpdateEmployee(suite.ctx, suite.world.admin, suite.world.clerk.ID, dto.UpdateEmployeeRequest{PermissionGroupID: &group})
	suite.Require().NoError(err)
	suite.Equal(viewerGroupID, updated.PermissionGroupID)
}

func (suite *PrincipalServiceTestSuite) TestDeactivate() {
	suite.ErrorIs(suite.employees.DeactivateEmployee(suite.ctx, suite.world.manager, suite.world.manager.ID), apperrors.ErrValidation)

	suite.Require().NoError(suite.employees.DeactivateEmployee(suite.ctx, suite.world.manager, suite.world.clerk.ID))
	suite.Require().NoError(suite.employees.DeactivateEmployee(suite.ctx, suite.world.manager, suite.world.clerk.ID))

	clerk, err := suite.employees.ResolvePrincipal(suite.ctx, suite.world.clerk.ID)
	suite.Require().NoError(err)
	suite.False(clerk.Active)

	// a deactivated employee loses every permission immediately
	_, err = suite.employees.ListEmployees(suite.ctx, *clerk, dto.ListEmployeesParams{})
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PrincipalServiceTestSuite) TestResolveUnknownPrincipal() {
	_, err := suite.employees.ResolvePrincipal(suite.ctx, "nobody")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *PrincipalServiceTestSuite) TestListEmployees() {
	list, err := suite.employees.ListEmployees(suite.ctx, suite.world.manager, dto.ListEmployeesParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Len(list, 2)

	list, err = suite.employees.ListEmployees(suite.ctx, suite.world.manager, dto.ListEmployeesParams{Limit: 10, Offset: 2})
	suite.Require().NoError(err)
	suite.Len(list, 2)
}

func TestPrincipalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PrincipalServiceTestSuite))
}
