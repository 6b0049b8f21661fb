package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/repository"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ProjectView is a project augmented with reconciled scope progress.
type ProjectView struct {
	Project           project.Project       `json:"project"`
	Scopes            []ScopeProgress       `json:"scopes"`
	Rollup            Rollup                `json:"rollup"`
	ProductionPercent *float64              `json:"production_percent"`
	ProductionDisplay string                `json:"production_display"`
	PhaseCount        int                   `json:"phase_count"`
	Spectrum          *project.SpectrumData `json:"spectrum,omitempty"`
}

// Build reconciles a project against its meeting phases.
func Build(p project.Project, phases []MeetingPhase) *ProjectView {
	result := Reconcile(p.Scopes, phases)
	pct := ProjectPercent(p, result)
	return &ProjectView{
		Project:           p,
		Scopes:            result.Scopes,
		Rollup:            result.Rollup,
		ProductionPercent: pct,
		ProductionDisplay: FormatPercent(pct),
		PhaseCount:        len(phases),
		Spectrum:          p.SpectrumData,
	}
}

// Service loads projects and produces reconciled progress views.
type Service struct {
	projects ProjectLoader
	repo     Repository
	logger   *slog.Logger
	flight   singleflight.Group
}

// NewService creates a new progress service.
func NewService(projects ProjectLoader, repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{projects: projects, repo: repo, logger: logger}
}

// ProjectProgress fetches a project and its meeting phases in parallel and
// returns the reconciled view. Concurrent calls for the same project share a
// single fetch; each caller still returns as soon as its own context is done
// and receives its own copy of the view.
func (s *Service) ProjectProgress(ctx context.Context, id project.ID) (*ProjectView, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, project.ErrInvalidInput
	}
	// The shared load must outlive any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(string(id), func() (any, error) {
		return s.load(shared, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ProjectView).clone(), nil
	}
}

// View reconciles an already fetched project, loading its meeting phases and
// ERP enrichment.
func (s *Service) View(ctx context.Context, p project.Project) (*ProjectView, error) {
	var (
		phases   []MeetingPhase
		spectrum *project.SpectrumData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		phases, err = s.phases(gctx, p.ID)
		return err
	})
	g.Go(func() error {
		spectrum = s.enrich(gctx, p)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := Build(p, phases)
	view.Spectrum = spectrum
	return view, nil
}

// load fetches the project and its phases in parallel. Enrichment starts as
// soon as the project (and so its job number) is known, alongside the phase
// fetch.
func (s *Service) load(ctx context.Context, id project.ID) (*ProjectView, error) {
	var (
		proj     *project.Project
		phases   []MeetingPhase
		spectrum *project.SpectrumData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		proj, err = s.projects.Get(gctx, id)
		if err != nil {
			return err
		}
		spectrum = s.enrich(gctx, *proj)
		return nil
	})
	g.Go(func() error {
		var err error
		phases, err = s.phases(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := Build(*proj, phases)
	view.Spectrum = spectrum
	s.logger.Debug("reconciled project", "project_id", id, "scopes", len(view.Scopes), "phases", len(phases))
	return view, nil
}

// clone copies the view so callers sharing a load never alias each other's
// slices.
func (v *ProjectView) clone() *ProjectView {
	out := *v
	out.Scopes = slices.Clone(v.Scopes)
	out.Project.Scopes = slices.Clone(v.Project.Scopes)
	if v.ProductionPercent != nil {
		pct := *v.ProductionPercent
		out.ProductionPercent = &pct
	}
	return &out
}

// phases returns the project's meeting phases. A project without meetings is
// reported by the backend as not found and yields no phases.
func (s *Service) phases(ctx context.Context, id project.ID) ([]MeetingPhase, error) {
	phases, err := s.repo.ListMeetingPhases(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing meeting phases: %w", err)
	}
	return phases, nil
}

// enrich loads ERP data for the project. It is best-effort: failures are
// logged and the view renders without enrichment.
func (s *Service) enrich(ctx context.Context, p project.Project) *project.SpectrumData {
	if p.SpectrumData != nil {
		return p.SpectrumData
	}
	if strings.TrimSpace(p.JobNumber) == "" {
		return nil
	}
	data, err := s.repo.GetSpectrumComprehensive(ctx, p.JobNumber)
	if err != nil {
		s.logger.Warn("spectrum enrichment unavailable", "job_number", p.JobNumber, "error", err)
		return nil
	}
	return data
}
