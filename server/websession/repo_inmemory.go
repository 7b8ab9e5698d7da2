package websession

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-youtube-uploader/authsession"
	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
)

// InMemoryRepo keeps browser sessions in memory. Sessions idle for longer than
// maxAge are expired on access and pruned on create.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newAuth  func() *authsession.Session
	maxAge   time.Duration
	nowTime  func() time.Time
}

var _ Repo = (*InMemoryRepo)(nil)

type Option func(*InMemoryRepo)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(now func() time.Time) Option {
	return func(r *InMemoryRepo) {
		r.nowTime = now
	}
}

// WithAuthSessionFactory sets how each browser's authorization session is built.
func WithAuthSessionFactory(newAuth func() *authsession.Session) Option {
	return func(r *InMemoryRepo) {
		r.newAuth = newAuth
	}
}

func NewInMemoryRepo(maxAge time.Duration, options ...Option) *InMemoryRepo {
	r := &InMemoryRepo{
		sessions: make(map[string]*Session),
		newAuth:  func() *authsession.Session { return authsession.New() },
		maxAge:   maxAge,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *InMemoryRepo) Create() (*Session, error) {
	now := r.nowTime()
	s := &Session{
		ID:        uuid.NewString(),
		Auth:      r.newAuth(),
		CreatedAt: now,
		lastSeen:  now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.sessions {
		if r.expired(existing, now) {
			delete(r.sessions, id)
		}
	}
	r.sessions[s.ID] = s
	return s, nil
}

// Get returns the session and marks it as seen.
func (r *InMemoryRepo) Get(sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, apperrors.ErrSessionNotFound
	}
	now := r.nowTime()

	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if r.expired(s, now) {
		_ = r.Delete(sessionID)
		return nil, apperrors.ErrSessionExpired
	}
	s.touch(now)
	return s, nil
}

func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *InMemoryRepo) expired(s *Session, now time.Time) bool {
	return r.maxAge > 0 && now.Sub(s.LastSeen()) > r.maxAge
}
