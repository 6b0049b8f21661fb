package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const (
	tenantIDKey contextKey = iota
	sessionIDKey
)

// sessionHeader names the HTTP header that carries the caller's session.
const sessionHeader = "Mcp-Session-Id"

// ErrUnauthorized is returned for requests without a valid bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// TenantResolver maps an API key to the tenant that owns it.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, token string) (string, error)
}

// unauthenticatedMethods complete the MCP handshake before any tool runs.
var unauthenticatedMethods = map[string]bool{
	"initialize": true,
	"ping":       true,
}

func getTenantID(ctx context.Context) string {
	v, _ := ctx.Value(tenantIDKey).(string)
	return v
}

// getSessionID returns the session that owns the caller's HQ credential.
func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// authMiddleware resolves the tenant from the API key in the Authorization
// header. Streamable HTTP requests carry headers; stdio requests do not and
// are rejected.
func authMiddleware(resolver TenantResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if unauthenticatedMethods[method] {
				return next(ctx, method, req)
			}
			tenantID, err := resolveTenant(ctx, resolver, requestHeader(req))
			if err != nil {
				return nil, err
			}
			return next(context.WithValue(ctx, tenantIDKey, tenantID), method, req)
		}
	}
}

func resolveTenant(ctx context.Context, resolver TenantResolver, header http.Header) (string, error) {
	if header == nil {
		return "", fmt.Errorf("%w: no request headers", ErrUnauthorized)
	}
	key, ok := strings.CutPrefix(header.Get("Authorization"), "Bearer ")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", fmt.Errorf("%w: missing api key", ErrUnauthorized)
	}
	tenantID, err := resolver.ResolveTenant(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if tenantID == "" {
		return "", fmt.Errorf("%w: unknown api key", ErrUnauthorized)
	}
	return tenantID, nil
}

// noAuthMiddleware runs every request as tenant.
func noAuthMiddleware(tenant string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(context.WithValue(ctx, tenantIDKey, tenant), method, req)
		}
	}
}

// sessionMiddleware binds the request to a session so portal tools can find
// the HQ credential remembered by hq_login. Sources, first match wins: the
// session header (streamable HTTP), _meta.session_id (stdio clients that
// multiplex users), then the SDK connection's own session.
func sessionMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if id := requestSessionID(req); id != "" {
				ctx = context.WithValue(ctx, sessionIDKey, id)
			}
			return next(ctx, method, req)
		}
	}
}

func requestSessionID(req sdkmcp.Request) string {
	if header := requestHeader(req); header != nil {
		if id := strings.TrimSpace(header.Get(sessionHeader)); id != "" {
			return id
		}
	}
	if id := metaSessionID(req); id != "" {
		return id
	}
	return safeSessionID(req)
}

func requestHeader(req sdkmcp.Request) http.Header {
	if req == nil {
		return nil
	}
	if extra := req.GetExtra(); extra != nil {
		return extra.Header
	}
	return nil
}

// metaSessionID reads _meta.session_id. Notifications such as "initialized"
// may carry typed-nil params whose GetMeta panics.
func metaSessionID(req sdkmcp.Request) (id string) {
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	params := safeParams(req)
	if params == nil {
		return ""
	}
	if sid, ok := params.GetMeta()["session_id"].(string); ok {
		return strings.TrimSpace(sid)
	}
	return ""
}
