package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, tenantID string, entry *ActivityEntry) error {
	if entry == nil || entry.ProjectID == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, tenantID, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	s.logger.Debug("activity logged", "project_id", entry.ProjectID, "type", entry.ActivityType)
	return nil
}

// LogScopeChange records a scope mutation.
func (s *Service) LogScopeChange(ctx context.Context, tenantID string, change project.ScopeChange) error {
	var activityType ActivityType
	switch change.Kind {
	case project.ChangeCreated:
		activityType = TypeScopeCreated
	case project.ChangeUpdated:
		activityType = TypeScopeUpdated
	case project.ChangeDeleted:
		activityType = TypeScopeDeleted
	default:
		return ErrInvalidInput
	}

	details, err := json.Marshal(map[string]string{
		"project_id": string(change.ProjectID),
		"scope_id":   string(change.ScopeID),
		"change":     string(change.Kind),
	})
	if err != nil {
		return fmt.Errorf("encoding activity details: %w", err)
	}

	entry := &ActivityEntry{
		ProjectID:    string(change.ProjectID),
		ActivityType: activityType,
		Summary:      change.Summary,
		Details:      string(details),
	}
	if change.ScopeID != "" {
		scopeID := string(change.ScopeID)
		entry.ScopeID = &scopeID
	}
	return s.LogActivity(ctx, tenantID, entry)
}

// GetRecentActivity lists activity entries with filtering.
func (s *Service) GetRecentActivity(ctx context.Context, tenantID string, opts ListActivityOptions) ([]ActivityEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	if opts.Offset < 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, tenantID, opts)
}
