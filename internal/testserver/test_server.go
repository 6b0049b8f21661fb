package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/sitetrack/internal/backend"
	"github.com/rpggio/sitetrack/internal/domain/activity"
	"github.com/rpggio/sitetrack/internal/domain/portal"
	"github.com/rpggio/sitetrack/internal/domain/progress"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/domain/session"
	"github.com/rpggio/sitetrack/internal/mcp"
	"github.com/rpggio/sitetrack/internal/sqlite"
	"github.com/rpggio/sitetrack/internal/transport"
	"github.com/stretchr/testify/require"
)

// HQPassword is the portal password accepted by the fake backend.
const HQPassword = "hq-secret"

type TestServer struct {
	Server   *httptest.Server
	Backend  *FakeBackend
	DB       *sqlite.DB
	Token    string
	TenantID string
}

// New starts the JSON-RPC server against a fresh fake backend and an
// in-memory database.
func New(t *testing.T, token, tenantID string) *TestServer {
	t.Helper()

	fake := NewFakeBackend(t, HQPassword)
	client, err := backend.New(backend.Config{BaseURL: fake.URL(), Token: "service-token"}, nil)
	require.NoError(t, err)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	apiKeys := sqlite.NewAPIKeyRepository(db)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)

	projectSvc := project.NewService(client, activitySvc, nil)
	handler := mcp.NewHandler(mcp.Services{
		Projects: projectSvc,
		Progress: progress.NewService(projectSvc, client, nil),
		Portal:   portal.NewService(client, sqlite.NewSnapshotRepository(db), []byte("testserver-secret"), nil),
		Sessions: session.NewService(nil),
		Activity: activitySvc,
	}, nil)

	server := httptest.NewServer(transport.NewServer(handler, transport.AuthMiddleware(apiKeys)))

	ts := &TestServer{
		Server:   server,
		Backend:  fake,
		DB:       db,
		Token:    token,
		TenantID: tenantID,
	}

	require.NoError(t, apiKeys.AddKey(context.Background(), tenantID, token, "test"))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Call sends a JSON-RPC request with the server's token and returns the
// HTTP status and decoded response.
func (ts *TestServer) Call(t *testing.T, sessionID, method string, params any) (int, transport.Response) {
	t.Helper()
	return ts.CallWithToken(t, ts.Token, sessionID, method, params)
}

// CallWithToken is Call with an explicit bearer token.
func (ts *TestServer) CallWithToken(t *testing.T, token, sessionID, method string, params any) (int, transport.Response) {
	t.Helper()

	payload := map[string]any{"jsonrpc": "2.0", "method": method, "id": 1}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out transport.Response
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

// MustResult calls method, requires success and decodes the result into out.
func (ts *TestServer) MustResult(t *testing.T, sessionID, method string, params, out any) {
	t.Helper()
	status, resp := ts.Call(t, sessionID, method, params)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	Decode(t, resp.Result, out)
}

// ErrorCode calls method, requires a coded error and returns its code.
func (ts *TestServer) ErrorCode(t *testing.T, sessionID, method string, params any) (string, map[string]any) {
	t.Helper()
	status, resp := ts.Call(t, sessionID, method, params)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Error)
	data, ok := resp.Error.Data.(map[string]any)
	require.True(t, ok, "error has no data: %+v", resp.Error)
	code, _ := data["code"].(string)
	return code, data
}

// Decode re-encodes a generic JSON value into out.
func Decode(t *testing.T, v any, out any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}
