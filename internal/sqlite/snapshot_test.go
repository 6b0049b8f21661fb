package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/portal"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepository_SaveLatest(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := &portal.Snapshot{
		ID:            "snap-1",
		CredentialKey: "cred",
		Projects:      []project.Project{{ID: "1", JobNumber: "J-1", Name: "Old"}},
		LoadedAt:      base,
	}
	newer := &portal.Snapshot{
		ID:            "snap-2",
		CredentialKey: "cred",
		Projects: []project.Project{{
			ID:                        "2",
			JobNumber:                 "J-2",
			Name:                      "New",
			ProductionPercentComplete: decimal.NewNullDecimal(decimal.RequireFromString("42.5")),
		}},
		LoadedAt: base.Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	got, err := repo.Latest(ctx, "cred")
	require.NoError(t, err)
	require.Equal(t, "snap-2", got.ID)
	require.Equal(t, "cred", got.CredentialKey)
	require.Len(t, got.Projects, 1)
	require.Equal(t, "New", got.Projects[0].Name)
	require.True(t, got.Projects[0].ProductionPercentComplete.Valid)
	require.Equal(t, "42.5", got.Projects[0].ProductionPercentComplete.Decimal.String())
	require.True(t, got.LoadedAt.Equal(newer.LoadedAt))
	require.False(t, got.Cached)
}

func TestSnapshotRepository_LatestNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSnapshotRepository(db)

	_, err := repo.Latest(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSnapshotRepository_CredentialIsolationAndPruning(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.Save(ctx, &portal.Snapshot{
			ID:            id,
			CredentialKey: "cred1",
			LoadedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Save(ctx, &portal.Snapshot{ID: "other", CredentialKey: "cred2", LoadedAt: base}))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM portal_snapshots WHERE credential_key = ?`, "cred1").Scan(&count))
	require.Equal(t, snapshotsKept, count)

	got, err := repo.Latest(ctx, "cred2")
	require.NoError(t, err)
	require.Equal(t, "other", got.ID)
	require.Empty(t, got.Projects)
}

func TestSnapshotRepository_SaveInvalid(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSnapshotRepository(db)

	err := repo.Save(context.Background(), &portal.Snapshot{ID: "x"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
