package backend

import (
	"context"
	"net/url"

	"github.com/rpggio/sitetrack/internal/domain/progress"
	"github.com/rpggio/sitetrack/internal/domain/project"
)

// ListMeetingPhases returns the meeting progress phases recorded for a project.
// The endpoint wraps them as {"phases": [...]}.
func (c *Client) ListMeetingPhases(ctx context.Context, projectID project.ID) ([]progress.MeetingPhase, error) {
	query := url.Values{}
	query.Set("project_id", string(projectID))
	return getList[progress.MeetingPhase](ctx, c, "/meetings/meetings/project_phases/", query)
}
