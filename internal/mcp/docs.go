package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `sitetrack reports construction progress from the project backend.

Core concepts:
- Project: a construction job with scopes of work, meeting phases and optional Spectrum ERP data.
- Scope: a category of work with an initial quantity (sq ft) and an installed quantity.
- Meeting phase: a progress snapshot recorded at a site meeting, keyed by phase code.
- Installed comes from the latest matching meeting phase, else the scope's stored value, else 0.
  Each scope reports its source (meeting, scope, none).

Workflow:
1) list_projects, then get_project_progress(project_id) for reconciled scope progress.
2) create_scope / update_scope / delete_scope return the project's refreshed progress.
3) HQ portal: hq_login(password) once per session, then get_portal_dashboard, list_divisions
   and get_project_summary. hq_logout forgets the password.
4) get_recent_activity lists scope changes made through this server.

Transport notes:
- HTTP: pass session id via Mcp-Session-Id header.
- Stdio: pass session id via _meta.session_id when supported; otherwise one default session is used.

Docs:
- sitetrack://docs/index
- sitetrack://docs/reconciliation
- sitetrack://docs/portal
- sitetrack://docs/errors
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "sitetrack://docs/index",
		Name:        "docs_index",
		Title:       "sitetrack docs index",
		Description: "Entry point: which tool answers which question.",
		Content: `# sitetrack docs

| Question | Tool |
|----------|------|
| Which projects exist? | ` + "`list_projects`" + ` |
| How far along is a project, scope by scope? | ` + "`get_project_progress`" + ` |
| Add, edit or remove a scope | ` + "`create_scope`" + `, ` + "`update_scope`" + `, ` + "`delete_scope`" + ` |
| Company-wide status | ` + "`hq_login`" + ` then ` + "`get_portal_dashboard`" + ` |
| One-paragraph status of a job | ` + "`get_project_summary`" + ` |
| Who changed what | ` + "`get_recent_activity`" + ` |

Read on demand:

- ` + "`sitetrack://docs/reconciliation`" + ` how installed quantities are resolved.
- ` + "`sitetrack://docs/portal`" + ` dashboard statuses, filters, charts and pagination.
- ` + "`sitetrack://docs/errors`" + ` error codes and recovery.
`,
	},
	{
		URI:         "sitetrack://docs/reconciliation",
		Name:        "docs_reconciliation",
		Title:       "Progress reconciliation",
		Description: "How meeting phases are matched to scopes and how percentages are derived.",
		Content: `# Progress reconciliation

## Matching

Keys are uppercased with everything except A-Z and 0-9 removed. A scope's keys
come from its scope type name and code and its scope type detail name and code.

1. Exact: a phase matches when its key equals one of the scope keys.
2. Substring: only when no phase matched exactly, a phase matches when its key
   contains a scope key or is contained by one. Empty keys never match.

Among matches the phase with the latest ` + "`meeting_date`" + ` wins, ties broken by
` + "`updated_at`" + `. Missing or unparseable dates sort earliest.

## Installed

- ` + "`meeting`" + `: the matched phase's installed quantity.
- ` + "`scope`" + `: no phase matched (or it had no quantity); the scope's stored value.
- ` + "`none`" + `: neither had data; installed is 0.

A source of ` + "`none`" + ` means "no data", not "confirmed zero".

## Derived values

- remaining = max(0, initial - installed)
- percent_complete = installed / initial * 100, 0 when initial is 0. Not capped;
  values over 100 are flagged ` + "`over_installed`" + `.
- bar_width = percent_complete clamped to [0, 100].

Project production percent is total installed / total quantity across
reconciled scopes. Without scopes it falls back to
` + "`production_percent_complete`" + `, then ` + "`total_installed / total_quantity`" + `,
otherwise ` + "`N/A`" + `.
`,
	},
	{
		URI:         "sitetrack://docs/portal",
		Name:        "docs_portal",
		Title:       "HQ portal",
		Description: "Statuses, filters, charts, summaries and pagination of the HQ dashboard.",
		Content: `# HQ portal

## Status

The ERP status code wins: A is ACTIVE, C is COMPLETED, I is PENDING. Otherwise
the project's own status is used when it is one of those three, else OTHER
(displayed with its raw value).

## Filters

Applied in order: status, division (code or name), search (case-insensitive
over name, job description, job number, branch name and branch code).
Stats, divisions and charts always cover the full list.

## Charts

- Active projects that have started and have at least one scope above 1%.
- Scopes at or above 90% versus below.
- Projects per scope type: top 3 and Other.

## Pagination

Page sizes 10, 25, 50 or 100 (default 10). Pages outside the range are clamped.

## Cache

The project list is loaded once per password and reused until ` + "`refresh`" + ` is
set. When the backend is unreachable the last saved list is served with
` + "`cached: true`" + `. A rejected password never falls back to the cache.
`,
	},
	{
		URI:         "sitetrack://docs/errors",
		Name:        "docs_errors",
		Title:       "Error codes",
		Description: "Tool error codes and what to do about them.",
		Content: `# Error codes

| Code | Meaning | Recovery |
|------|---------|----------|
| PROJECT_NOT_FOUND | Unknown project id or job number | Check the id |
| SCOPE_NOT_FOUND | Unknown scope id | Reload the project |
| FORBIDDEN | Role may not manage scopes | Use ROOT_SUPERADMIN, ADMIN or PROJECT_MANAGER |
| INVALID_INPUT | Missing or negative values | Fix the arguments |
| INVALID_PARAMS | Arguments are not valid JSON for the tool | Check tools/list |
| VALIDATION_FAILED | Backend rejected fields; details lists them | Fix the listed fields |
| CREDENTIAL_REQUIRED | No HQ password in this session | Call hq_login |
| INVALID_CREDENTIAL | HQ password rejected | Call hq_login again |
| SUPERSEDED | A newer dashboard load replaced this one | Use the newer result |
| BACKEND_UNAUTHORIZED | Service token rejected | Not retried; fix configuration |
| BACKEND_UNAVAILABLE | Backend unreachable | Retry later |
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
