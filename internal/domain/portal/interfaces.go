package portal

import (
	"context"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// Source fetches the full password-gated HQ project list.
type Source interface {
	ListHQProjects(ctx context.Context, password string) ([]project.Project, error)
}

// SnapshotStore persists the last good project list per credential.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Latest(ctx context.Context, credentialKey string) (*Snapshot, error)
}
