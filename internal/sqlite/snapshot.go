package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/sitetrack/internal/domain/portal"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/repository"
)

// snapshotsKept bounds the history retained per credential.
const snapshotsKept = 3

// SnapshotRepository implements portal.SnapshotStore for SQLite
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save stores snap and prunes older snapshots for the same credential
func (r *SnapshotRepository) Save(ctx context.Context, snap *portal.Snapshot) error {
	if snap == nil || snap.ID == "" || snap.CredentialKey == "" {
		return repository.ErrInvalidInput
	}

	payload, err := json.Marshal(snap.Projects)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO portal_snapshots (id, credential_key, project_count, payload, loaded_at)
		VALUES (?, ?, ?, ?, ?)
	`, snap.ID, snap.CredentialKey, len(snap.Projects), string(payload), snap.LoadedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("snapshot %s already stored: %w", snap.ID, repository.ErrInvalidInput)
		}
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM portal_snapshots
		WHERE credential_key = ? AND id NOT IN (
			SELECT id FROM portal_snapshots
			WHERE credential_key = ?
			ORDER BY loaded_at DESC
			LIMIT ?
		)
	`, snap.CredentialKey, snap.CredentialKey, snapshotsKept)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recently loaded snapshot for credentialKey
func (r *SnapshotRepository) Latest(ctx context.Context, credentialKey string) (*portal.Snapshot, error) {
	var snap portal.Snapshot
	var payload string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, credential_key, payload, loaded_at
		FROM portal_snapshots
		WHERE credential_key = ?
		ORDER BY loaded_at DESC
		LIMIT 1
	`, credentialKey).Scan(&snap.ID, &snap.CredentialKey, &payload, &snap.LoadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var projects []project.Project
	if err := json.Unmarshal([]byte(payload), &projects); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", snap.ID, err)
	}
	snap.Projects = projects

	return &snap, nil
}
