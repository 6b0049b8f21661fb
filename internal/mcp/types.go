package mcp

import (
	"time"

	"github.com/rpggio/sitetrack/internal/domain/activity"
	"github.com/rpggio/sitetrack/internal/domain/portal"
	"github.com/rpggio/sitetrack/internal/domain/progress"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/shopspring/decimal"
)

type GetProjectProgressParams struct {
	ProjectID project.ID `json:"project_id"`
}

type CreateScopeParams struct {
	Role        project.Role        `json:"role"`
	ProjectID   project.ID          `json:"project_id"`
	ScopeType   string              `json:"scope_type"`
	Description string              `json:"description,omitempty"`
	Quantity    decimal.NullDecimal `json:"quantity"`
	Foreman     *int                `json:"foreman,omitempty"`
}

type UpdateScopeParams struct {
	Role        project.Role        `json:"role"`
	ProjectID   project.ID          `json:"project_id"`
	ScopeID     project.ID          `json:"scope_id"`
	Description *string             `json:"description,omitempty"`
	Quantity    decimal.NullDecimal `json:"quantity"`
	Foreman     *int                `json:"foreman,omitempty"`
}

type DeleteScopeParams struct {
	Role      project.Role `json:"role"`
	ProjectID project.ID   `json:"project_id"`
	ScopeID   project.ID   `json:"scope_id"`
}

type HQLoginParams struct {
	Password string `json:"password"`
}

// PortalParams carries an optional inline password. When omitted the
// password remembered by hq_login is used.
type PortalParams struct {
	Password string `json:"password,omitempty"`
}

type GetPortalDashboardParams struct {
	PortalParams
	Status   portal.Status `json:"status,omitempty"`
	Division string        `json:"division,omitempty"`
	Search   string        `json:"search,omitempty"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"page_size,omitempty"`
	Refresh  bool          `json:"refresh,omitempty"`
}

type GetProjectSummaryParams struct {
	PortalParams
	Project string `json:"project"`
}

type GetRecentActivityParams struct {
	ProjectID string                 `json:"project_id,omitempty"`
	ScopeID   *string                `json:"scope_id,omitempty"`
	Type      *activity.ActivityType `json:"type,omitempty"`
	Limit     int                    `json:"limit,omitempty"`
	Offset    int                    `json:"offset,omitempty"`
}

type ProjectSummaryResponse struct {
	ID                project.ID             `json:"id"`
	JobNumber         string                 `json:"job_number"`
	Name              string                 `json:"name"`
	Status            string                 `json:"status"`
	BranchName        string                 `json:"branch_name,omitempty"`
	ScheduleStatus    project.ScheduleStatus `json:"schedule_status,omitempty"`
	ScopeCount        int                    `json:"scope_count"`
	ProductionPercent *float64               `json:"production_percent"`
	ProductionDisplay string                 `json:"production_display"`
}

type ScopeMutationResponse struct {
	Change   project.ChangeKind    `json:"change"`
	ScopeID  project.ID            `json:"scope_id,omitempty"`
	Progress *progress.ProjectView `json:"progress"`
}

type HQLoginResponse struct {
	SessionID string    `json:"session_id"`
	Projects  int       `json:"projects"`
	LoadedAt  time.Time `json:"loaded_at"`
	Cached    bool      `json:"cached,omitempty"`
}

type ProjectSummaryTextResponse struct {
	Summary portal.Summary `json:"summary"`
	Text    string         `json:"text"`
}

type ActivityEntryResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	ProjectID string                `json:"project_id"`
	ScopeID   *string               `json:"scope_id,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}
