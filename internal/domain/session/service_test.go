package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionService_RememberAndCredential(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	sess, err := svc.Remember(ctx, "tenant1", "sess1", "hq-secret")
	require.NoError(t, err)
	require.Equal(t, "sess1", sess.ID)
	require.True(t, sess.HasCredential())
	require.Equal(t, start, sess.CreatedAt)

	svc.now = func() time.Time { return start.Add(time.Minute) }
	password, err := svc.Credential(ctx, "tenant1", "sess1")
	require.NoError(t, err)
	require.Equal(t, "hq-secret", password)

	got, err := svc.Get(ctx, "tenant1", "sess1")
	require.NoError(t, err)
	require.Equal(t, start, got.CreatedAt)
	require.Equal(t, start.Add(time.Minute), got.LastActivity)
}

func TestSessionService_CredentialNeverSerialized(t *testing.T) {
	svc := NewService(nil)
	sess, err := svc.Remember(context.Background(), "tenant1", "sess1", "hq-secret")
	require.NoError(t, err)

	data, err := json.Marshal(sess)
	require.NoError(t, err)
	require.NotContains(t, string(data), "hq-secret")
}

func TestSessionService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)
	_, err := svc.Remember(ctx, "tenant1", "sess1", "pw")
	require.NoError(t, err)

	_, err = svc.Credential(ctx, "tenant2", "sess1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_InvalidInput(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Remember(context.Background(), "tenant1", "", "pw")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Remember(context.Background(), "tenant1", "sess1", " ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSessionService_Close(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)
	_, err := svc.Remember(ctx, "tenant1", "sess1", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Close(ctx, "tenant1", "sess1"))
	_, err = svc.Credential(ctx, "tenant1", "sess1")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, svc.Close(ctx, "tenant1", "sess1"), ErrSessionNotFound)
}
