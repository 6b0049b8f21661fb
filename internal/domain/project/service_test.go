package project_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/repository"
	"github.com/rpggio/sitetrack/internal/repository/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProjectService_Get_LoadsScopesWhenAbsent(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	scopes := []project.Scope{{ID: "s1"}}
	backend.On("GetProject", ctx, project.ID("7")).Return(&project.Project{ID: "7"}, nil)
	backend.On("ListScopes", ctx, project.ID("7")).Return(scopes, nil)

	svc := project.NewService(backend, nil, nil)
	proj, err := svc.Get(ctx, "7")
	require.NoError(t, err)
	require.Equal(t, scopes, proj.Scopes)
	backend.AssertExpectations(t)
}

func TestProjectService_Get_EmbeddedScopes(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("GetProject", ctx, project.ID("7")).Return(&project.Project{ID: "7", Scopes: []project.Scope{}}, nil)

	svc := project.NewService(backend, nil, nil)
	proj, err := svc.Get(ctx, "7")
	require.NoError(t, err)
	require.Empty(t, proj.Scopes)
	backend.AssertNotCalled(t, "ListScopes", mock.Anything, mock.Anything)
}

func TestProjectService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("GetProject", ctx, project.ID("404")).Return(nil, repository.ErrNotFound)

	svc := project.NewService(backend, nil, nil)
	_, err := svc.Get(ctx, "404")
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	_, err = svc.Get(ctx, " ")
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_CreateScope_RefetchesProject(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	activity := &mocks.ActivityLogger{}
	foreman := 2

	backend.On("CreateScope", ctx, mock.MatchedBy(func(in project.ScopeInput) bool {
		return in.ProjectID == "7" && in.ScopeType == "Masonry" && in.Quantity.Equal(decimal.NewFromInt(100)) &&
			in.Description != nil && *in.Description == "North wall" && *in.Foreman == 2
	})).Return(&project.Scope{ID: "s9"}, nil)
	activity.On("LogScopeChange", ctx, "tenant1", mock.MatchedBy(func(c project.ScopeChange) bool {
		return c.Kind == project.ChangeCreated && c.ProjectID == "7" && c.ScopeID == "s9"
	})).Return(nil)
	refreshed := &project.Project{ID: "7", Scopes: []project.Scope{{ID: "s9"}}}
	backend.On("GetProject", ctx, project.ID("7")).Return(refreshed, nil)

	svc := project.NewService(backend, activity, nil)
	proj, err := svc.CreateScope(ctx, "tenant1", project.CreateScopeRequest{
		Role:        project.RoleProjectManager,
		ProjectID:   "7",
		ScopeType:   "Masonry",
		Description: "North wall",
		Quantity:    decimal.NewFromInt(100),
		Foreman:     &foreman,
	})
	require.NoError(t, err)
	require.Same(t, refreshed, proj)
	backend.AssertExpectations(t)
	activity.AssertExpectations(t)
}

func TestProjectService_CreateScope_Validation(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	svc := project.NewService(backend, nil, nil)

	_, err := svc.CreateScope(ctx, "tenant1", project.CreateScopeRequest{
		Role: "FOREMAN", ProjectID: "7", ScopeType: "Masonry",
	})
	require.ErrorIs(t, err, project.ErrForbidden)

	_, err = svc.CreateScope(ctx, "tenant1", project.CreateScopeRequest{
		Role: project.RoleAdmin, ProjectID: "7", ScopeType: "Masonry", Quantity: decimal.NewFromInt(-1),
	})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = svc.CreateScope(ctx, "tenant1", project.CreateScopeRequest{
		Role: project.RoleAdmin, ProjectID: "7",
	})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	backend.AssertNotCalled(t, "CreateScope", mock.Anything, mock.Anything)
}

func TestProjectService_UpdateScope(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	qty := decimal.NewFromInt(300)

	backend.On("UpdateScope", ctx, project.ID("s1"), mock.MatchedBy(func(in project.ScopeInput) bool {
		return in.Quantity != nil && in.Quantity.Equal(qty) && in.Description == nil && in.Foreman == nil
	})).Return(&project.Scope{ID: "s1"}, nil)
	backend.On("GetProject", ctx, project.ID("7")).Return(&project.Project{ID: "7", Scopes: []project.Scope{}}, nil)

	svc := project.NewService(backend, nil, nil)
	proj, err := svc.UpdateScope(ctx, "tenant1", project.UpdateScopeRequest{
		Role: project.RoleAdmin, ProjectID: "7", ScopeID: "s1", Quantity: &qty,
	})
	require.NoError(t, err)
	require.Equal(t, project.ID("7"), proj.ID)

	_, err = svc.UpdateScope(ctx, "tenant1", project.UpdateScopeRequest{
		Role: project.RoleAdmin, ProjectID: "7", ScopeID: "s1",
	})
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_UpdateScope_NotFound(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	desc := "x"
	backend.On("UpdateScope", ctx, project.ID("gone"), mock.Anything).Return(nil, repository.ErrNotFound)

	svc := project.NewService(backend, nil, nil)
	_, err := svc.UpdateScope(ctx, "tenant1", project.UpdateScopeRequest{
		Role: project.RoleAdmin, ProjectID: "7", ScopeID: "gone", Description: &desc,
	})
	require.ErrorIs(t, err, project.ErrScopeNotFound)
}

func TestProjectService_DeleteScope_ActivityFailureIgnored(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	activity := &mocks.ActivityLogger{}

	backend.On("DeleteScope", ctx, project.ID("s1")).Return(nil)
	backend.On("GetProject", ctx, project.ID("7")).Return(&project.Project{ID: "7", Scopes: []project.Scope{}}, nil)
	activity.On("LogScopeChange", ctx, "tenant1", mock.Anything).Return(errors.New("disk full"))

	svc := project.NewService(backend, activity, nil)
	proj, err := svc.DeleteScope(ctx, "tenant1", project.DeleteScopeRequest{
		Role: project.RoleRootSuperadmin, ProjectID: "7", ScopeID: "s1",
	})
	require.NoError(t, err)
	require.Equal(t, project.ID("7"), proj.ID)
	activity.AssertExpectations(t)
}

func TestProjectService_List_WrapsErrors(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("ListProjects", ctx).Return(nil, repository.ErrUnauthorized)

	svc := project.NewService(backend, nil, nil)
	_, err := svc.List(ctx)
	require.ErrorIs(t, err, repository.ErrUnauthorized)
}
