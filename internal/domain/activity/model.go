package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeScopeCreated ActivityType = "scope_created"
	TypeScopeUpdated ActivityType = "scope_updated"
	TypeScopeDeleted ActivityType = "scope_deleted"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TenantID     string       `json:"tenant_id"`
	ProjectID    string       `json:"project_id"`
	ScopeID      *string      `json:"scope_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
