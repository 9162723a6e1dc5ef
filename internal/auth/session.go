package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/library-console/internal/models"
)

const (
	SessionTTL    = 24 * time.Hour
	SessionCookie = "session_id"
)

// Session is one browser's authenticated state: the bearer token issued by
// the backend and the user it belongs to.
type Session struct {
	ID    string
	Token string
	User  models.User
}

func (s *Session) Authenticated() bool { return s != nil && s.Token != "" }

type storedSession struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SessionStore wraps Redis for session management. Tokens are sealed at rest.
type SessionStore struct {
	rdb    *redis.Client
	sealer *sealer
}

func NewSessionStore(rdb *redis.Client, secret string) (*SessionStore, error) {
	s, err := newSealer(secret)
	if err != nil {
		return nil, err
	}
	return &SessionStore{rdb: rdb, sealer: s}, nil
}

// Create persists token and user under a fresh session id.
func (s *SessionStore) Create(ctx context.Context, token string, user models.User) (*Session, error) {
	sealed, err := s.sealer.seal(token)
	if err != nil {
		return nil, fmt.Errorf("seal token: %w", err)
	}
	b, err := json.Marshal(storedSession{Token: sealed, User: user})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	sid := uuid.New().String()
	if err := s.rdb.Set(ctx, "session:"+sid, b, SessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Session{ID: sid, Token: token, User: user}, nil
}

// Get returns the session, or nil if not found / expired / unreadable.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	val, err := s.rdb.Get(ctx, "session:"+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stored storedSession
	if err := json.Unmarshal(val, &stored); err != nil {
		return nil, nil
	}
	token, err := s.sealer.open(stored.Token)
	if err != nil {
		return nil, nil
	}
	return &Session{ID: sessionID, Token: token, User: stored.User}, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, "session:"+sessionID).Err()
}

type ctxKey struct{}

// WithSession returns ctx carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the request's session, or nil when logged out.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(ctxKey{}).(*Session)
	return sess
}
