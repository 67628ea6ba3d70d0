// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements cookie-based session authentication backed by an
// in-memory session store. Sessions are process-local: a restart logs
// everyone out, which is acceptable for a single-node dashboard deployment.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "triage_session"

// session is a single authenticated dashboard session.
type session struct {
	username  string
	expiresAt time.Time
}

// SessionStore is a mutex-guarded in-memory token -> session map.
// Expired entries are evicted lazily on lookup and opportunistically
// on mint.
type SessionStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]session

	now func() time.Time
}

// NewSessionStore constructs a SessionStore with the given session TTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{
		ttl:  ttl,
		data: make(map[string]session),
		now:  time.Now,
	}
}

// Mint creates a session for username and returns the opaque token.
func (s *SessionStore) Mint(username string) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for t, sess := range s.data {
		if now.After(sess.expiresAt) {
			delete(s.data, t)
		}
	}
	s.data[token] = session{username: username, expiresAt: now.Add(s.ttl)}
	return token
}

// Lookup resolves a token to its username. Expired or unknown tokens
// return ok=false; expired entries are removed.
func (s *SessionStore) Lookup(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.data[token]
	if !ok {
		return "", false
	}
	if s.now().After(sess.expiresAt) {
		delete(s.data, token)
		return "", false
	}
	return sess.username, true
}

// Destroy removes a session. Unknown tokens are a no-op.
func (s *SessionStore) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token)
}

// TTL returns the configured session lifetime.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// RequireSession guards dashboard routes. Requests without a valid
// session cookie are rejected with 401; on success the username is
// stored under "userID" for downstream middleware (rate limit keys,
// access logs).
func RequireSession(store *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			unauthenticated(c)
			return
		}
		user, ok := store.Lookup(token)
		if !ok {
			unauthenticated(c)
			return
		}
		c.Set("userID", user)
		c.Next()
	}
}

func unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":    false,
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"error":      "authentication required",
	})
}
