package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolsListResult lists the tool catalog.
type ToolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

var roleProperty = map[string]any{
	"type":        "string",
	"description": "Backend role of the caller",
	"enum":        []string{"ROOT_SUPERADMIN", "ADMIN", "PROJECT_MANAGER"},
}

var passwordProperty = map[string]any{
	"type":        "string",
	"description": "HQ portal password (omit to use the one stored by hq_login)",
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Projects
		{
			Name:        "list_projects",
			Description: "List backend projects with their production percentage",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "get_project_progress",
			Description: "Get reconciled per-scope progress for a project, using the latest matching meeting phase for installed quantities",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"project_id"},
			},
		},

		// Scopes
		{
			Name:        "create_scope",
			Description: "Create a scope of work on a project and return the project's refreshed progress",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"role":       roleProperty,
					"project_id": map[string]any{"type": "string", "description": "Owning project ID"},
					"scope_type": map[string]any{"type": "string", "description": "Scope type ID or name"},
					"description": map[string]any{
						"type":        "string",
						"description": "Scope description",
					},
					"quantity": map[string]any{
						"type":        []string{"number", "string"},
						"description": "Initial planned quantity in square feet (non-negative)",
					},
					"foreman": map[string]any{
						"type":        "integer",
						"description": "Foreman user ID",
					},
				},
				"required": []string{"role", "project_id", "scope_type", "quantity"},
			},
		},
		{
			Name:        "update_scope",
			Description: "Edit a scope's description, quantity or foreman. Masons, tenders and operators come from meetings and cannot be set",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"role":        roleProperty,
					"project_id":  map[string]any{"type": "string", "description": "Owning project ID"},
					"scope_id":    map[string]any{"type": "string", "description": "Scope ID"},
					"description": map[string]any{"type": "string", "description": "New description"},
					"quantity": map[string]any{
						"type":        []string{"number", "string"},
						"description": "New initial quantity (non-negative)",
					},
					"foreman": map[string]any{"type": "integer", "description": "Foreman user ID"},
				},
				"required": []string{"role", "project_id", "scope_id"},
			},
		},
		{
			Name:        "delete_scope",
			Description: "Delete a scope and return the project's refreshed progress",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"role":       roleProperty,
					"project_id": map[string]any{"type": "string", "description": "Owning project ID"},
					"scope_id":   map[string]any{"type": "string", "description": "Scope ID"},
				},
				"required": []string{"role", "project_id", "scope_id"},
			},
		},

		// HQ portal
		{
			Name:        "hq_login",
			Description: "Validate the HQ portal password and remember it for this session",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"password": map[string]any{"type": "string", "description": "HQ portal password"},
				},
				"required": []string{"password"},
			},
		},
		{
			Name:        "hq_logout",
			Description: "Forget the HQ portal password stored for this session",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "get_portal_dashboard",
			Description: "Get HQ dashboard stats, divisions, charts and a filtered, paginated project list",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"password": passwordProperty,
					"status": map[string]any{
						"type":        "string",
						"description": "Status filter",
						"enum":        []string{"ACTIVE", "COMPLETED", "PENDING", "OTHER"},
					},
					"division": map[string]any{"type": "string", "description": "Division code or name"},
					"search":   map[string]any{"type": "string", "description": "Case-insensitive search over name, description, job number and branch"},
					"page":     map[string]any{"type": "integer", "description": "1-based page number"},
					"page_size": map[string]any{
						"type":        "integer",
						"description": "Page size",
						"enum":        []int{10, 25, 50, 100},
					},
					"refresh": map[string]any{"type": "boolean", "description": "Reload the project list from the backend"},
				},
			},
		},
		{
			Name:        "list_divisions",
			Description: "List the divisions present in the HQ project list",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"password": passwordProperty,
				},
			},
		},
		{
			Name:        "get_project_summary",
			Description: "Get a narrative progress summary for one HQ project",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"password": passwordProperty,
					"project":  map[string]any{"type": "string", "description": "Project ID or job number"},
				},
				"required": []string{"project"},
			},
		},

		// Activity
		{
			Name:        "get_recent_activity",
			Description: "List recent scope changes made through this server",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{"type": "string", "description": "Filter by project"},
					"scope_id":   map[string]any{"type": "string", "description": "Filter by scope"},
					"type": map[string]any{
						"type": "string",
						"enum": []string{"scope_created", "scope_updated", "scope_deleted"},
					},
					"limit":  map[string]any{"type": "integer", "description": "Maximum entries (default 20, max 200)"},
					"offset": map[string]any{"type": "integer", "description": "Offset for pagination"},
				},
			},
		},
	}
}

// registerTools exposes every catalog entry as an SDK tool backed by h.
func registerTools(server *sdkmcp.Server, h *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			sessionID := getSessionID(ctx)
			if req != nil {
				if req.Params != nil {
					args = req.Params.Arguments
				}
				if sessionID == "" && req.Session != nil {
					sessionID = req.Session.ID()
				}
			}

			result, err := h.Handle(ctx, getTenantID(ctx), sessionID, name, args)
			if err != nil {
				apiErr := MapError(err)
				if apiErr == nil {
					return nil, err
				}
				return textResult(apiErr, true)
			}
			return textResult(result, false)
		})
	}
}

func textResult(payload any, isError bool) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: isError,
	}, nil
}
