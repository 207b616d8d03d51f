package argocd

import "sync"

// Session carries the auth token for one Argo CD server. It is handed to
// the client explicitly; the UI and the state store share the same value.
type Session struct {
	mu    sync.RWMutex
	token string
}

func NewSession(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear drops the token after the server rejected it.
func (s *Session) Clear() {
	s.SetToken("")
}
