package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const redacted = "[redacted]"

// sensitiveKeys are argument names whose values never reach the log.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"authorization": {},
	"token":         {},
}

func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			attrs := []any{
				"direction", direction,
				"method", method,
				"session_id", safeSessionID(req),
				"tenant_id", getTenantID(ctx),
			}
			logger.Debug("mcp traffic", append(attrs, "stage", "request", "params", formatPayload(safeParams(req)))...)

			start := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			attrs = append(attrs, "stage", "response", "duration", time.Since(start), "result", formatPayload(result))
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Debug("mcp traffic", attrs...)
			return result, err
		}
	}
}

func safeSessionID(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	defer func() { recover() }()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) sdkmcp.Params {
	if req == nil {
		return nil
	}
	defer func() { recover() }()
	return req.GetParams()
}

// formatPayload renders payload as JSON with credentials masked.
func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	if !containsSensitiveKey(data) {
		return string(data)
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return redacted
	}
	masked, err := json.Marshal(redact(generic))
	if err != nil {
		return redacted
	}
	return string(masked)
}

func containsSensitiveKey(data []byte) bool {
	lower := bytes.ToLower(data)
	for key := range sensitiveKeys {
		if bytes.Contains(lower, []byte(`"`+key+`"`)) {
			return true
		}
	}
	return false
}

// redact masks sensitive keys at any depth.
func redact(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
				val[k] = redacted
				continue
			}
			val[k] = redact(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = redact(inner)
		}
		return val
	default:
		return val
	}
}
