package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/sitetrack/internal/repository"
	"github.com/shopspring/decimal"
)

// ScopeInput is the writable subset of a scope. Nil fields are left untouched
// on update. Masons, tenders and operators are derived from meetings and are
// deliberately absent.
type ScopeInput struct {
	ProjectID   ID
	ScopeType   string
	Description *string
	Quantity    *decimal.Decimal
	Foreman     *int
}

// ChangeKind names a scope mutation.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ScopeChange describes a completed scope mutation.
type ScopeChange struct {
	Kind      ChangeKind
	ProjectID ID
	ScopeID   ID
	Summary   string
}

// Service handles project reads and scope mutations.
type Service struct {
	repo     Repository
	activity ActivityLogger
	logger   *slog.Logger
}

// NewService creates a new project service. activity may be nil.
func NewService(repo Repository, activity ActivityLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, activity: activity, logger: logger}
}

// CreateScopeRequest defines scope creation inputs.
type CreateScopeRequest struct {
	Role        Role
	ProjectID   ID
	ScopeType   string
	Description string
	Quantity    decimal.Decimal
	Foreman     *int
}

// UpdateScopeRequest defines scope edit inputs.
type UpdateScopeRequest struct {
	Role        Role
	ProjectID   ID
	ScopeID     ID
	Description *string
	Quantity    *decimal.Decimal
	Foreman     *int
}

// DeleteScopeRequest identifies the scope to delete and its owning project.
type DeleteScopeRequest struct {
	Role      Role
	ProjectID ID
	ScopeID   ID
}

// List returns all projects visible to the backend credentials.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Get fetches a project with its scopes. When the detail payload does not
// embed scopes they are loaded from the scope endpoint.
func (s *Service) Get(ctx context.Context, id ID) (*Project, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrInvalidInput
	}
	proj, err := s.repo.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if proj.Scopes == nil {
		scopes, err := s.repo.ListScopes(ctx, id)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("listing scopes: %w", err)
		}
		proj.Scopes = scopes
	}
	return proj, nil
}

// CreateScope attaches a new scope to a project and returns the re-fetched project.
func (s *Service) CreateScope(ctx context.Context, tenantID string, req CreateScopeRequest) (*Project, error) {
	if !CanManageScopes(req.Role) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(string(req.ProjectID)) == "" || strings.TrimSpace(req.ScopeType) == "" {
		return nil, ErrInvalidInput
	}
	if req.Quantity.IsNegative() {
		return nil, ErrInvalidInput
	}

	qty := req.Quantity
	in := ScopeInput{
		ProjectID: req.ProjectID,
		ScopeType: req.ScopeType,
		Quantity:  &qty,
		Foreman:   req.Foreman,
	}
	if req.Description != "" {
		desc := req.Description
		in.Description = &desc
	}

	scope, err := s.repo.CreateScope(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("creating scope: %w", err)
	}

	s.record(ctx, tenantID, ScopeChange{
		Kind:      ChangeCreated,
		ProjectID: req.ProjectID,
		ScopeID:   scope.ID,
		Summary:   fmt.Sprintf("created scope %s (%s) with quantity %s", scope.ID, req.ScopeType, qty.String()),
	})

	return s.Get(ctx, req.ProjectID)
}

// UpdateScope edits a scope's metadata or initial quantity and returns the
// re-fetched project.
func (s *Service) UpdateScope(ctx context.Context, tenantID string, req UpdateScopeRequest) (*Project, error) {
	if !CanManageScopes(req.Role) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(string(req.ProjectID)) == "" || strings.TrimSpace(string(req.ScopeID)) == "" {
		return nil, ErrInvalidInput
	}
	if req.Quantity != nil && req.Quantity.IsNegative() {
		return nil, ErrInvalidInput
	}
	if req.Description == nil && req.Quantity == nil && req.Foreman == nil {
		return nil, ErrInvalidInput
	}

	_, err := s.repo.UpdateScope(ctx, req.ScopeID, ScopeInput{
		Description: req.Description,
		Quantity:    req.Quantity,
		Foreman:     req.Foreman,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScopeNotFound
		}
		return nil, fmt.Errorf("updating scope: %w", err)
	}

	s.record(ctx, tenantID, ScopeChange{
		Kind:      ChangeUpdated,
		ProjectID: req.ProjectID,
		ScopeID:   req.ScopeID,
		Summary:   fmt.Sprintf("updated scope %s", req.ScopeID),
	})

	return s.Get(ctx, req.ProjectID)
}

// DeleteScope removes a scope and returns the re-fetched owning project.
func (s *Service) DeleteScope(ctx context.Context, tenantID string, req DeleteScopeRequest) (*Project, error) {
	if !CanManageScopes(req.Role) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(string(req.ProjectID)) == "" || strings.TrimSpace(string(req.ScopeID)) == "" {
		return nil, ErrInvalidInput
	}

	if err := s.repo.DeleteScope(ctx, req.ScopeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScopeNotFound
		}
		return nil, fmt.Errorf("deleting scope: %w", err)
	}

	s.record(ctx, tenantID, ScopeChange{
		Kind:      ChangeDeleted,
		ProjectID: req.ProjectID,
		ScopeID:   req.ScopeID,
		Summary:   fmt.Sprintf("deleted scope %s", req.ScopeID),
	})

	return s.Get(ctx, req.ProjectID)
}

// record logs a mutation. Audit failures never fail the mutation itself.
func (s *Service) record(ctx context.Context, tenantID string, change ScopeChange) {
	if s.activity == nil {
		return
	}
	if err := s.activity.LogScopeChange(ctx, tenantID, change); err != nil {
		s.logger.Warn("failed to record scope change", "project_id", change.ProjectID, "scope_id", change.ScopeID, "error", err)
	}
}
