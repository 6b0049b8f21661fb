package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// hqPageSize keeps the fake HQ list paginated so clients must follow next.
const hqPageSize = 2

// ScopeType is a backend scope category.
type ScopeType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// FakeScope is a scope as stored by the fake backend. Quantities are decimal
// strings, matching the real API.
type FakeScope struct {
	ID        string
	ProjectID string
	TypeID    int
	Qty       string
	Installed *string
	Foreman   int
}

// FakePhase is a meeting progress phase.
type FakePhase struct {
	PhaseCode         string `json:"phase_code"`
	InstalledQuantity string `json:"installed_quantity"`
	MeetingDate       string `json:"meeting_date"`
	UpdatedAt         string `json:"updated_at"`
}

// FakeProject is a project as stored by the fake backend.
type FakeProject struct {
	ID                 string
	JobNumber          string
	Name               string
	Status             string
	SpectrumStatusCode string
	BranchCode         string
	BranchName         string
	StartDate          string
	ScheduleStatus     string
}

// FakeBackend is an in-memory stand-in for the project-management REST API.
type FakeBackend struct {
	Server *httptest.Server

	mu          sync.Mutex
	password    string
	unavailable bool
	nextScope   int
	types       []ScopeType
	projects    []FakeProject
	scopes      []FakeScope
	phases      map[string][]FakePhase
	spectrum    map[string]json.RawMessage
}

// NewFakeBackend starts a fake backend serving under /api.
func NewFakeBackend(t *testing.T, hqPassword string) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		password:  hqPassword,
		nextScope: 100,
		phases:    make(map[string][]FakePhase),
		spectrum:  make(map[string]json.RawMessage),
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(b.availability)
		r.Get("/projects/", b.listProjects)
		r.Get("/projects/public/hq/projects/", b.listHQProjects)
		r.Get("/projects/scopes/", b.listScopes)
		r.Post("/projects/scopes/", b.createScope)
		r.Patch("/projects/scopes/{id}/", b.updateScope)
		r.Delete("/projects/scopes/{id}/", b.deleteScope)
		r.Get("/projects/{id}/", b.getProject)
		r.Get("/meetings/meetings/project_phases/", b.listPhases)
		r.Get("/spectrum/projects/{job}/comprehensive/", b.getSpectrum)
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL.
func (b *FakeBackend) URL() string {
	return b.Server.URL + "/api"
}

// AddScopeType registers a scope category.
func (b *FakeBackend) AddScopeType(st ScopeType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.types = append(b.types, st)
}

// AddProject registers a project.
func (b *FakeBackend) AddProject(p FakeProject) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects = append(b.projects, p)
}

// AddScope registers a scope.
func (b *FakeBackend) AddScope(s FakeScope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scopes = append(b.scopes, s)
}

// AddPhase records a meeting phase for a project.
func (b *FakeBackend) AddPhase(projectID string, phase FakePhase) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phases[projectID] = append(b.phases[projectID], phase)
}

// SetSpectrum sets the ERP payload for a job number.
func (b *FakeBackend) SetSpectrum(jobNumber string, payload json.RawMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spectrum[jobNumber] = payload
}

// SetUnavailable makes every endpoint answer 503.
func (b *FakeBackend) SetUnavailable(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unavailable = down
}

// ScopeCount returns the number of stored scopes for a project.
func (b *FakeBackend) ScopeCount(projectID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.scopes {
		if s.ProjectID == projectID {
			n++
		}
	}
	return n
}

func (b *FakeBackend) availability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		down := b.unavailable
		b.mu.Unlock()
		if down {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "Service unavailable."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) listProjects(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	results := make([]map[string]any, 0, len(b.projects))
	for _, p := range b.projects {
		results = append(results, b.projectJSON(p, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "next": nil, "results": results})
}

func (b *FakeBackend) listHQProjects(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.URL.Query().Get("password") != b.password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid password."})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	start := (page - 1) * hqPageSize
	end := min(start+hqPageSize, len(b.projects))
	results := make([]map[string]any, 0, hqPageSize)
	for i := start; i < end; i++ {
		results = append(results, b.projectJSON(b.projects[i], true))
	}

	var next any
	if end < len(b.projects) {
		q := url.Values{}
		q.Set("password", b.password)
		q.Set("page", strconv.Itoa(page+1))
		next = "/api/projects/public/hq/projects/?" + q.Encode()
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(b.projects), "next": next, "results": results})
}

func (b *FakeBackend) getProject(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	for _, p := range b.projects {
		if p.ID == id {
			writeJSON(w, http.StatusOK, b.projectJSON(p, false))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (b *FakeBackend) listScopes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	projectID := r.URL.Query().Get("project")
	out := make([]map[string]any, 0)
	for _, s := range b.scopes {
		if s.ProjectID == projectID {
			out = append(out, b.scopeJSON(s))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type scopeWrite struct {
	Project     string  `json:"project"`
	ScopeType   string  `json:"scope_type"`
	Description *string `json:"description"`
	QtySqFt     *string `json:"qty_sq_ft"`
	Foreman     *int    `json:"foreman"`
}

func (b *FakeBackend) createScope(w http.ResponseWriter, r *http.Request) {
	var in scopeWrite
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.lookupType(in.ScopeType)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"scope_type": {"Invalid scope type."}})
		return
	}
	if in.QtySqFt == nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"qty_sq_ft": {"This field is required."}})
		return
	}

	b.nextScope++
	scope := FakeScope{
		ID:        strconv.Itoa(b.nextScope),
		ProjectID: in.Project,
		TypeID:    st.ID,
		Qty:       *in.QtySqFt,
	}
	if in.Foreman != nil {
		scope.Foreman = *in.Foreman
	}
	b.scopes = append(b.scopes, scope)
	writeJSON(w, http.StatusCreated, b.scopeJSON(scope))
}

func (b *FakeBackend) updateScope(w http.ResponseWriter, r *http.Request) {
	var in scopeWrite
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := chi.URLParam(r, "id")
	for i := range b.scopes {
		if b.scopes[i].ID != id {
			continue
		}
		if in.QtySqFt != nil {
			b.scopes[i].Qty = *in.QtySqFt
		}
		if in.Foreman != nil {
			b.scopes[i].Foreman = *in.Foreman
		}
		writeJSON(w, http.StatusOK, b.scopeJSON(b.scopes[i]))
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (b *FakeBackend) deleteScope(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := chi.URLParam(r, "id")
	for i := range b.scopes {
		if b.scopes[i].ID == id {
			b.scopes = append(b.scopes[:i], b.scopes[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (b *FakeBackend) listPhases(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	phases, ok := b.phases[r.URL.Query().Get("project_id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No meetings found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"phases": phases})
}

func (b *FakeBackend) getSpectrum(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	payload, ok := b.spectrum[chi.URLParam(r, "job")]
	if !ok {
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "Spectrum unreachable."})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (b *FakeBackend) lookupType(ref string) (ScopeType, bool) {
	for _, st := range b.types {
		if ref == st.Name || ref == st.Code || ref == strconv.Itoa(st.ID) {
			return st, true
		}
	}
	return ScopeType{}, false
}

func (b *FakeBackend) projectJSON(p FakeProject, withScopes bool) map[string]any {
	out := map[string]any{
		"id":                   json.Number(p.ID),
		"job_number":           p.JobNumber,
		"name":                 p.Name,
		"status":               p.Status,
		"spectrum_status_code": p.SpectrumStatusCode,
		"branch_code":          p.BranchCode,
		"branch_name":          p.BranchName,
		"start_date":           p.StartDate,
		"schedule_status":      p.ScheduleStatus,
	}
	if withScopes {
		scopes := make([]map[string]any, 0)
		for _, s := range b.scopes {
			if s.ProjectID == p.ID {
				scopes = append(scopes, b.scopeJSON(s))
			}
		}
		out["scopes"] = scopes
	}
	return out
}

func (b *FakeBackend) scopeJSON(s FakeScope) map[string]any {
	out := map[string]any{
		"id":        json.Number(s.ID),
		"project":   json.Number(s.ProjectID),
		"qty_sq_ft": s.Qty,
		"installed": nil,
		"foreman":   s.Foreman,
		"masons":    0,
		"tenders":   0,
		"operators": 0,
	}
	for _, st := range b.types {
		if st.ID == s.TypeID {
			out["scope_type"] = st
		}
	}
	if s.Installed != nil {
		out["installed"] = *s.Installed
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(fmt.Sprintf("encode fake response: %v", err))
	}
}
