package mocks

import (
	"context"

	"github.com/rpggio/sitetrack/internal/domain/activity"
	"github.com/rpggio/sitetrack/internal/domain/portal"
	"github.com/rpggio/sitetrack/internal/domain/progress"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// Backend is a mock for the REST backend client. It satisfies
// project.Repository, progress.Repository and portal.Source.
type Backend struct {
	mock.Mock
}

func (m *Backend) ListProjects(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) GetProject(ctx context.Context, id project.ID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) ListScopes(ctx context.Context, projectID project.ID) ([]project.Scope, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]project.Scope); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) CreateScope(ctx context.Context, in project.ScopeInput) (*project.Scope, error) {
	args := m.Called(ctx, in)
	if scope, ok := args.Get(0).(*project.Scope); ok {
		return scope, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) UpdateScope(ctx context.Context, id project.ID, in project.ScopeInput) (*project.Scope, error) {
	args := m.Called(ctx, id, in)
	if scope, ok := args.Get(0).(*project.Scope); ok {
		return scope, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) DeleteScope(ctx context.Context, id project.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Backend) ListMeetingPhases(ctx context.Context, projectID project.ID) ([]progress.MeetingPhase, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]progress.MeetingPhase); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) GetSpectrumComprehensive(ctx context.Context, jobNumber string) (*project.SpectrumData, error) {
	args := m.Called(ctx, jobNumber)
	if data, ok := args.Get(0).(*project.SpectrumData); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) ListHQProjects(ctx context.Context, password string) ([]project.Project, error) {
	args := m.Called(ctx, password)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityLogger is a mock for project.ActivityLogger.
type ActivityLogger struct {
	mock.Mock
}

func (m *ActivityLogger) LogScopeChange(ctx context.Context, tenantID string, change project.ScopeChange) error {
	args := m.Called(ctx, tenantID, change)
	return args.Error(0)
}

// SnapshotStore is a mock for portal.SnapshotStore.
type SnapshotStore struct {
	mock.Mock
}

func (m *SnapshotStore) Save(ctx context.Context, snap *portal.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *SnapshotStore) Latest(ctx context.Context, credentialKey string) (*portal.Snapshot, error) {
	args := m.Called(ctx, credentialKey)
	if snap, ok := args.Get(0).(*portal.Snapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}
