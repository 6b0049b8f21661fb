package project

import "context"

// Repository provides access to projects and scopes held by the backend.
type Repository interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id ID) (*Project, error)
	ListScopes(ctx context.Context, projectID ID) ([]Scope, error)
	CreateScope(ctx context.Context, in ScopeInput) (*Scope, error)
	UpdateScope(ctx context.Context, id ID, in ScopeInput) (*Scope, error)
	DeleteScope(ctx context.Context, id ID) error
}

// ActivityLogger records scope mutations.
type ActivityLogger interface {
	LogScopeChange(ctx context.Context, tenantID string, change ScopeChange) error
}
