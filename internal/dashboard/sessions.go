package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"guildhub/internal/apperr"
)

const (
	sessionCookie = "session_id"
	stateTTL      = 10 * time.Minute
)

type Session struct {
	ID          string
	UserID      string
	Username    string
	Avatar      string
	AccessToken string
	ExpiresAt   time.Time
}

// Sessions keeps logins and pending OAuth states in memory. Both expire on
// their own.
type Sessions struct {
	ttl      time.Duration
	sessions *cache.Cache

	stateMu sync.Mutex
	states  *cache.Cache
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:      ttl,
		sessions: cache.New(ttl, 10*time.Minute),
		states:   cache.New(stateTTL, time.Minute),
	}
}

// Create stores a session that lasts until the configured TTL or the token
// expiry, whichever comes first.
func (s *Sessions) Create(userID, username, avatar, accessToken string, tokenExpiry time.Time) (Session, error) {
	ttl := s.ttl
	if !tokenExpiry.IsZero() {
		remaining := time.Until(tokenExpiry)
		if remaining <= 0 {
			return Session{}, apperr.Unauthenticated("access token already expired")
		}
		if remaining < ttl {
			ttl = remaining
		}
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return Session{}, err
	}
	sess := Session{
		ID:          id.String(),
		UserID:      userID,
		Username:    username,
		Avatar:      avatar,
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(ttl),
	}
	s.sessions.Set(sess.ID, sess, ttl)
	return sess, nil
}

func (s *Sessions) Get(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	value, ok := s.sessions.Get(id)
	if !ok {
		return Session{}, false
	}
	return value.(Session), true
}

func (s *Sessions) Delete(id string) {
	s.sessions.Delete(id)
}

func (s *Sessions) NewState() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	s.states.SetDefault(id.String(), true)
	return id.String(), nil
}

// ConsumeState reports whether state was issued and not used yet.
func (s *Sessions) ConsumeState(state string) bool {
	if state == "" {
		return false
	}
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if _, ok := s.states.Get(state); !ok {
		return false
	}
	s.states.Delete(state)
	return true
}
