package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/sitetrack/internal/domain/activity"
	"github.com/rpggio/sitetrack/internal/domain/portal"
	"github.com/rpggio/sitetrack/internal/domain/progress"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/domain/session"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	List(ctx context.Context) ([]project.Project, error)
	CreateScope(ctx context.Context, tenantID string, req project.CreateScopeRequest) (*project.Project, error)
	UpdateScope(ctx context.Context, tenantID string, req project.UpdateScopeRequest) (*project.Project, error)
	DeleteScope(ctx context.Context, tenantID string, req project.DeleteScopeRequest) (*project.Project, error)
}

// ProgressService defines progress operations needed by MCP.
type ProgressService interface {
	ProjectProgress(ctx context.Context, id project.ID) (*progress.ProjectView, error)
	View(ctx context.Context, p project.Project) (*progress.ProjectView, error)
}

// PortalService defines HQ portal operations needed by MCP.
type PortalService interface {
	Dashboard(ctx context.Context, cred portal.Credential, q portal.Query, refresh bool) (*portal.Dashboard, error)
	Divisions(ctx context.Context, cred portal.Credential) ([]portal.Division, error)
	Summary(ctx context.Context, cred portal.Credential, ref string) (*portal.Summary, error)
}

// SessionService defines session operations needed by MCP.
type SessionService interface {
	Remember(ctx context.Context, tenantID, sessionID, password string) (*session.Session, error)
	Credential(ctx context.Context, tenantID, sessionID string) (string, error)
	Close(ctx context.Context, tenantID, sessionID string) error
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Progress ProgressService
	Portal   PortalService
	Sessions SessionService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      TenantResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "sitetrack",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode: always disable auth (local dev only)
	if cfg.TransportMode == "stdio" {
		server.AddReceivingMiddleware(noAuthMiddleware(DefaultTenant))
	} else {
		if cfg.AuthEnabled {
			server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
		} else {
			server.AddReceivingMiddleware(noAuthMiddleware(DefaultTenant))
		}
	}
	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services, cfg.Logger))

	return server
}
