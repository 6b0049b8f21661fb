package progress

import (
	"context"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// ProjectLoader fetches a project with its scopes. project.Service satisfies it.
type ProjectLoader interface {
	Get(ctx context.Context, id project.ID) (*project.Project, error)
}

// Repository fetches the meeting and ERP payloads that feed reconciliation.
type Repository interface {
	ListMeetingPhases(ctx context.Context, projectID project.ID) ([]MeetingPhase, error)
	GetSpectrumComprehensive(ctx context.Context, jobNumber string) (*project.SpectrumData, error)
}
