package portal

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/repository"
)

// Credential is the session-scoped HQ portal password.
type Credential struct {
	Password string
}

// Key is a stable, non-reversible identifier for the credential: an
// HMAC-SHA256 of the password under the server secret. Keys are persisted with
// snapshots, so they must not be computable from the password alone.
func (c Credential) Key(secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(c.Password))
	return hex.EncodeToString(mac.Sum(nil))
}

// Snapshot is a loaded HQ project list.
type Snapshot struct {
	ID            string            `json:"id"`
	CredentialKey string            `json:"-"`
	Projects      []project.Project `json:"projects"`
	LoadedAt      time.Time         `json:"loaded_at"`
	Cached        bool              `json:"cached,omitempty"`
}

type loaded struct {
	snapshot *Snapshot
	entries  []Entry
}

// Service loads the HQ project list and serves dashboard views over it.
type Service struct {
	source Source
	store  SnapshotStore
	secret []byte
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	generations map[string]uint64
	current     map[string]*loaded
}

// NewService creates a new portal service. store may be nil. secret keys the
// credential identifiers stored with snapshots.
func NewService(source Source, store SnapshotStore, secret []byte, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		source:      source,
		store:       store,
		secret:      secret,
		logger:      logger,
		now:         time.Now,
		generations: make(map[string]uint64),
		current:     make(map[string]*loaded),
	}
}

// Load fetches the full project list for cred and installs it as the current
// snapshot. A load that is overtaken by a newer load for the same credential
// returns ErrSuperseded and leaves the newer result in place. When the backend
// is unreachable the last persisted snapshot is served instead.
func (s *Service) Load(ctx context.Context, cred Credential) (*Snapshot, error) {
	l, err := s.load(ctx, cred)
	if err != nil {
		return nil, err
	}
	return l.snapshot, nil
}

func (s *Service) load(ctx context.Context, cred Credential) (*loaded, error) {
	if strings.TrimSpace(cred.Password) == "" {
		return nil, ErrCredentialRequired
	}
	key := cred.Key(s.secret)

	s.mu.Lock()
	s.generations[key]++
	gen := s.generations[key]
	s.mu.Unlock()

	snap, err := s.fetch(ctx, cred, key)
	if err != nil {
		return nil, err
	}

	l := &loaded{snapshot: snap, entries: BuildEntries(snap.Projects)}

	s.mu.Lock()
	if s.generations[key] != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded portal load", "snapshot_id", snap.ID)
		return nil, ErrSuperseded
	}
	s.current[key] = l
	s.mu.Unlock()

	if s.store != nil && !snap.Cached {
		if err := s.store.Save(ctx, snap); err != nil {
			s.logger.Warn("failed to persist portal snapshot", "snapshot_id", snap.ID, "error", err)
		}
	}
	return l, nil
}

func (s *Service) fetch(ctx context.Context, cred Credential, key string) (*Snapshot, error) {
	projects, err := s.source.ListHQProjects(ctx, cred.Password)
	if err == nil {
		snap := &Snapshot{
			ID:            uuid.NewString(),
			CredentialKey: key,
			Projects:      projects,
			LoadedAt:      s.now(),
		}
		s.logger.Info("loaded portal projects", "snapshot_id", snap.ID, "projects", len(projects))
		return snap, nil
	}

	if errors.Is(err, repository.ErrUnauthorized) {
		return nil, ErrInvalidCredential
	}
	if !errors.Is(err, repository.ErrUnavailable) || s.store == nil {
		return nil, fmt.Errorf("listing portal projects: %w", err)
	}

	cached, cacheErr := s.store.Latest(ctx, key)
	if cacheErr != nil {
		if !errors.Is(cacheErr, repository.ErrNotFound) {
			s.logger.Warn("failed to read portal snapshot", "error", cacheErr)
		}
		return nil, fmt.Errorf("listing portal projects: %w", err)
	}
	s.logger.Warn("backend unavailable, serving cached portal snapshot", "snapshot_id", cached.ID, "loaded_at", cached.LoadedAt, "error", err)
	cached.Cached = true
	return cached, nil
}

// entries returns the current entries for cred, loading them when absent or
// when refresh is set.
func (s *Service) entries(ctx context.Context, cred Credential, refresh bool) (*loaded, error) {
	if strings.TrimSpace(cred.Password) == "" {
		return nil, ErrCredentialRequired
	}
	if !refresh {
		s.mu.Lock()
		l, ok := s.current[cred.Key(s.secret)]
		s.mu.Unlock()
		if ok {
			return l, nil
		}
	}
	return s.load(ctx, cred)
}

// Dashboard returns the portal dashboard for cred.
func (s *Service) Dashboard(ctx context.Context, cred Credential, q Query, refresh bool) (*Dashboard, error) {
	l, err := s.entries(ctx, cred, refresh)
	if err != nil {
		return nil, err
	}
	d := BuildDashboard(l.entries, q, s.now())
	d.LoadedAt = l.snapshot.LoadedAt
	d.Cached = l.snapshot.Cached
	return &d, nil
}

// Divisions lists the divisions present in the portal set.
func (s *Service) Divisions(ctx context.Context, cred Credential) ([]Division, error) {
	l, err := s.entries(ctx, cred, false)
	if err != nil {
		return nil, err
	}
	divisions := Divisions(l.entries)
	if divisions == nil {
		divisions = []Division{}
	}
	return divisions, nil
}

// Summary returns the narrative summary of one portal project, looked up by id
// or job number.
func (s *Service) Summary(ctx context.Context, cred Credential, ref string) (*Summary, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrProjectNotFound
	}
	l, err := s.entries(ctx, cred, false)
	if err != nil {
		return nil, err
	}
	for _, e := range l.entries {
		if string(e.Project.ID) == ref || e.Project.JobNumber == ref {
			summary := Summarize(e)
			return &summary, nil
		}
	}
	return nil, ErrProjectNotFound
}
