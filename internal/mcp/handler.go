package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/sitetrack/internal/domain/activity"
	"github.com/rpggio/sitetrack/internal/domain/portal"
	"github.com/rpggio/sitetrack/internal/domain/progress"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/domain/session"
	"github.com/shopspring/decimal"
)

const (
	// DefaultTenant is used when auth is disabled.
	DefaultTenant = "default"
	// DefaultSession is used when the transport supplies no session id.
	DefaultSession = "default"
)

// Handler dispatches MCP commands.
type Handler struct {
	projects ProjectService
	progress ProgressService
	portal   PortalService
	sessions SessionService
	activity ActivityService
	logger   *slog.Logger
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		projects: services.Projects,
		progress: services.Progress,
		portal:   services.Portal,
		sessions: services.Sessions,
		activity: services.Activity,
		logger:   logger,
	}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "tools/list":
		return ToolsListResult{Tools: buildToolCatalog()}, nil
	case "tools/call":
		var req toolCallParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Name == "" || strings.HasPrefix(req.Name, "tools/") {
			return nil, unknownMethod(req.Name)
		}
		return h.Handle(ctx, tenantID, sessionID, req.Name, req.Arguments)

	case "list_projects":
		projects, err := h.projects.List(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ProjectSummaryResponse, 0, len(projects))
		for _, p := range projects {
			pct := progress.ProductionPercent(p)
			resp = append(resp, ProjectSummaryResponse{
				ID:                p.ID,
				JobNumber:         p.JobNumber,
				Name:              p.Name,
				Status:            portal.StatusLabel(p),
				BranchName:        p.BranchName,
				ScheduleStatus:    p.ScheduleStatus,
				ScopeCount:        len(p.Scopes),
				ProductionPercent: pct,
				ProductionDisplay: progress.FormatPercent(pct),
			})
		}
		return resp, nil
	case "get_project_progress":
		var req GetProjectProgressParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		view, err := h.progress.ProjectProgress(ctx, req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		return view, nil

	case "create_scope":
		var req CreateScopeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if !req.Quantity.Valid {
			return nil, mapError(fmt.Errorf("%w: quantity is required", project.ErrInvalidInput))
		}
		proj, err := h.projects.CreateScope(ctx, tenantID, project.CreateScopeRequest{
			Role:        req.Role,
			ProjectID:   req.ProjectID,
			ScopeType:   req.ScopeType,
			Description: req.Description,
			Quantity:    req.Quantity.Decimal,
			Foreman:     req.Foreman,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.scopeMutation(ctx, project.ChangeCreated, "", proj)
	case "update_scope":
		var req UpdateScopeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.UpdateScope(ctx, tenantID, project.UpdateScopeRequest{
			Role:        req.Role,
			ProjectID:   req.ProjectID,
			ScopeID:     req.ScopeID,
			Description: req.Description,
			Quantity:    decimalPtr(req.Quantity),
			Foreman:     req.Foreman,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.scopeMutation(ctx, project.ChangeUpdated, req.ScopeID, proj)
	case "delete_scope":
		var req DeleteScopeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.DeleteScope(ctx, tenantID, project.DeleteScopeRequest{
			Role:      req.Role,
			ProjectID: req.ProjectID,
			ScopeID:   req.ScopeID,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.scopeMutation(ctx, project.ChangeDeleted, req.ScopeID, proj)

	case "hq_login":
		var req HQLoginParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if strings.TrimSpace(req.Password) == "" {
			return nil, mapError(portal.ErrCredentialRequired)
		}
		sid := sessionOrDefault(sessionID)
		sess, err := h.sessions.Remember(ctx, tenantID, sid, req.Password)
		if err != nil {
			return nil, mapError(err)
		}
		dash, err := h.portal.Dashboard(ctx, portal.Credential{Password: req.Password}, portal.Query{}, true)
		if err != nil {
			if errors.Is(err, portal.ErrInvalidCredential) {
				if closeErr := h.sessions.Close(ctx, tenantID, sid); closeErr != nil {
					h.logger.Warn("failed to clear rejected credential", "session_id", sid, "error", closeErr)
				}
			}
			return nil, mapError(err)
		}
		return HQLoginResponse{
			SessionID: sess.ID,
			Projects:  dash.Stats.Total,
			LoadedAt:  dash.LoadedAt,
			Cached:    dash.Cached,
		}, nil
	case "hq_logout":
		if err := h.sessions.Close(ctx, tenantID, sessionOrDefault(sessionID)); err != nil {
			return nil, mapError(err)
		}
		return map[string]string{"status": "logged_out"}, nil
	case "get_portal_dashboard":
		var req GetPortalDashboardParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		cred, err := h.credential(ctx, tenantID, sessionID, req.PortalParams)
		if err != nil {
			return nil, mapError(err)
		}
		dash, err := h.portal.Dashboard(ctx, cred, portal.Query{
			Filter: portal.Filter{
				Status:   req.Status,
				Division: req.Division,
				Search:   req.Search,
			},
			Page:     req.Page,
			PageSize: req.PageSize,
		}, req.Refresh)
		if err != nil {
			return nil, mapError(err)
		}
		return dash, nil
	case "list_divisions":
		var req PortalParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		cred, err := h.credential(ctx, tenantID, sessionID, req)
		if err != nil {
			return nil, mapError(err)
		}
		divisions, err := h.portal.Divisions(ctx, cred)
		if err != nil {
			return nil, mapError(err)
		}
		return divisions, nil
	case "get_project_summary":
		var req GetProjectSummaryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		cred, err := h.credential(ctx, tenantID, sessionID, req.PortalParams)
		if err != nil {
			return nil, mapError(err)
		}
		summary, err := h.portal.Summary(ctx, cred, req.Project)
		if err != nil {
			return nil, mapError(err)
		}
		return ProjectSummaryTextResponse{Summary: *summary, Text: summary.Text()}, nil

	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.activity.GetRecentActivity(ctx, tenantID, activity.ListActivityOptions{
			ProjectID:    req.ProjectID,
			ScopeID:      req.ScopeID,
			ActivityType: req.Type,
			Limit:        req.Limit,
			Offset:       req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				Timestamp: entry.CreatedAt,
				Type:      entry.ActivityType,
				ProjectID: entry.ProjectID,
				ScopeID:   entry.ScopeID,
				Summary:   entry.Summary,
				Details:   entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, unknownMethod(method)
	}
}

// scopeMutation reconciles the re-fetched project after a scope change.
func (h *Handler) scopeMutation(ctx context.Context, kind project.ChangeKind, scopeID project.ID, proj *project.Project) (any, error) {
	view, err := h.progress.View(ctx, *proj)
	if err != nil {
		return nil, mapError(err)
	}
	return ScopeMutationResponse{Change: kind, ScopeID: scopeID, Progress: view}, nil
}

// credential resolves the portal password from the request or the session.
// An inline password is also remembered for later calls.
func (h *Handler) credential(ctx context.Context, tenantID, sessionID string, params PortalParams) (portal.Credential, error) {
	sid := sessionOrDefault(sessionID)
	if strings.TrimSpace(params.Password) != "" {
		if _, err := h.sessions.Remember(ctx, tenantID, sid, params.Password); err != nil {
			return portal.Credential{}, err
		}
		return portal.Credential{Password: params.Password}, nil
	}
	password, err := h.sessions.Credential(ctx, tenantID, sid)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrNoCredential) {
			return portal.Credential{}, portal.ErrCredentialRequired
		}
		return portal.Credential{}, err
	}
	return portal.Credential{Password: password}, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), RecoveryHint: "Check argument names and types against tools/list"}
	}
	return nil
}

func unknownMethod(method string) error {
	return &APIError{Code: "UNKNOWN_METHOD", Message: fmt.Sprintf("unknown method: %s", method), RecoveryHint: "Call tools/list for available tools"}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

func sessionOrDefault(sessionID string) string {
	if strings.TrimSpace(sessionID) == "" {
		return DefaultSession
	}
	return sessionID
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
