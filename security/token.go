package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	tokenBytes     = 16
	sessionIDBytes = 16
)

// TokenStore binds a rotating anti-abuse token to each visitor session. A
// token proves the submission originated from a page this server issued; it
// is reissued on every gate response, success or failure, so a client must
// always adopt the latest token before retrying.
type TokenStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionToken
	ttl      time.Duration
	now      func() time.Time
}

type sessionToken struct {
	token    string
	issuedAt time.Time
}

// NewTokenStore creates a token store whose sessions expire after ttl.
// A nil clock means time.Now; tests inject a fake clock.
func NewTokenStore(ttl time.Duration, clock func() time.Time) *TokenStore {
	if clock == nil {
		clock = time.Now
	}
	ts := &TokenStore{
		sessions: make(map[string]*sessionToken),
		ttl:      ttl,
		now:      clock,
	}

	go ts.cleanupExpired()

	return ts
}

// Issue mints a fresh token for the session, replacing any previous one and
// resetting the form-issue timestamp. Rotation is the same operation: the
// old token becomes invalid the moment a new one is issued.
func (ts *TokenStore) Issue(sessionID string) string {
	token := randomHex(tokenBytes)

	ts.mu.Lock()
	ts.sessions[sessionID] = &sessionToken{token: token, issuedAt: ts.now()}
	ts.mu.Unlock()

	return token
}

// Verify reports whether the submitted token matches the one currently bound
// to the session. Absent sessions, expired sessions, and stale tokens are all
// plain mismatches; callers must not distinguish them in any response.
func (ts *TokenStore) Verify(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}

	ts.mu.Lock()
	st, ok := ts.sessions[sessionID]
	ts.mu.Unlock()

	if !ok {
		return false
	}

	// Expiry is enforced here, not just by the cleanup ticker, so a token
	// older than ttl never verifies.
	if ts.now().Sub(st.issuedAt) > ts.ttl {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(st.token), []byte(token)) == 1
}

// Age returns how long ago the session's current token was issued. The gate
// uses this to reject submissions that arrive implausibly fast after the
// form was served.
func (ts *TokenStore) Age(sessionID string) (time.Duration, bool) {
	ts.mu.Lock()
	st, ok := ts.sessions[sessionID]
	ts.mu.Unlock()

	if !ok {
		return 0, false
	}
	return ts.now().Sub(st.issuedAt), true
}

// cleanupExpired periodically drops sessions whose token is older than ttl.
func (ts *TokenStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ts.mu.Lock()
		cutoff := ts.now().Add(-ts.ttl)
		for id, st := range ts.sessions {
			if st.issuedAt.Before(cutoff) {
				delete(ts.sessions, id)
			}
		}
		remaining := len(ts.sessions)
		ts.mu.Unlock()

		log.Debug().Int("sessions", remaining).Msg("Cleaned up expired form sessions")
	}
}

// NewSessionID mints an opaque session identifier for the session cookie.
func NewSessionID() string {
	return randomHex(sessionIDBytes)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in no state to serve
		log.Fatal().Err(err).Msg("Failed to read random bytes")
	}
	return hex.EncodeToString(buf)
}
