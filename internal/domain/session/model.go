package session

import "time"

// Session is a caller's working context. It holds the HQ portal credential
// for as long as the caller's connection lives.
type Session struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	credential   string
}

// HasCredential reports whether a portal credential is stored.
func (s *Session) HasCredential() bool {
	return s.credential != ""
}
