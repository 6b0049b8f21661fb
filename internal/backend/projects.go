package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/shopspring/decimal"
)

// ListProjects returns every project visible to the client's token.
func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	return getList[project.Project](ctx, c, "/projects/", nil)
}

// GetProject returns one project.
func (c *Client) GetProject(ctx context.Context, id project.ID) (*project.Project, error) {
	var proj project.Project
	if err := c.getObject(ctx, "/projects/"+url.PathEscape(string(id))+"/", nil, &proj); err != nil {
		return nil, err
	}
	return &proj, nil
}

// ListHQProjects returns the full password-gated HQ project list.
func (c *Client) ListHQProjects(ctx context.Context, password string) ([]project.Project, error) {
	query := url.Values{}
	query.Set("password", password)
	return getList[project.Project](ctx, c, "/projects/public/hq/projects/", query)
}

// ListScopes returns the scopes attached to a project.
func (c *Client) ListScopes(ctx context.Context, projectID project.ID) ([]project.Scope, error) {
	query := url.Values{}
	query.Set("project", string(projectID))
	return getList[project.Scope](ctx, c, "/projects/scopes/", query)
}

// CreateScope creates a scope.
func (c *Client) CreateScope(ctx context.Context, in project.ScopeInput) (*project.Scope, error) {
	body := scopeBody(in)
	body["project"] = string(in.ProjectID)
	if in.ScopeType != "" {
		body["scope_type"] = in.ScopeType
	}
	return c.writeScope(ctx, http.MethodPost, c.endpoint("/projects/scopes/", nil), body)
}

// UpdateScope patches the provided fields of a scope.
func (c *Client) UpdateScope(ctx context.Context, id project.ID, in project.ScopeInput) (*project.Scope, error) {
	target := c.endpoint("/projects/scopes/"+url.PathEscape(string(id))+"/", nil)
	return c.writeScope(ctx, http.MethodPatch, target, scopeBody(in))
}

// DeleteScope deletes a scope.
func (c *Client) DeleteScope(ctx context.Context, id project.ID) error {
	target := c.endpoint("/projects/scopes/"+url.PathEscape(string(id))+"/", nil)
	_, err := c.do(ctx, http.MethodDelete, target, nil)
	return err
}

func (c *Client) writeScope(ctx context.Context, method string, target *url.URL, body map[string]any) (*project.Scope, error) {
	data, err := c.do(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	var scope project.Scope
	if len(data) == 0 {
		return &scope, nil
	}
	if err := json.Unmarshal(data, &scope); err != nil {
		return nil, fmt.Errorf("decode scope: %w", err)
	}
	return &scope, nil
}

// scopeBody encodes the writable scope fields that are set.
func scopeBody(in project.ScopeInput) map[string]any {
	body := make(map[string]any)
	if in.Description != nil {
		body["description"] = *in.Description
	}
	if in.Quantity != nil {
		body["qty_sq_ft"] = quantityString(*in.Quantity)
	}
	if in.Foreman != nil {
		body["foreman"] = *in.Foreman
	}
	return body
}

func quantityString(d decimal.Decimal) string {
	return d.StringFixed(2)
}
