package authflowrepo

import (
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
// Entries older than the timeout are treated as missing and pruned on write.
type InMemoryRepo struct {
	mu      sync.RWMutex
	states  map[string]*AuthFlowState
	timeout time.Duration
	nowTime func() time.Time
}

var _ Repo = (*InMemoryRepo)(nil)

type Option func(*InMemoryRepo)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(now func() time.Time) Option {
	return func(r *InMemoryRepo) {
		r.nowTime = now
	}
}

// NewInMemoryRepo creates a new in-memory auth flow state repository.
// A zero timeout keeps entries until they are taken or deleted.
func NewInMemoryRepo(timeout time.Duration, options ...Option) *InMemoryRepo {
	r := &InMemoryRepo{
		states:  make(map[string]*AuthFlowState),
		timeout: timeout,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Upsert stores or updates an auth flow state
func (r *InMemoryRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "state cannot be empty")
	}
	if authState == nil || authState.SessionID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "auth state needs a session")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	copied := *authState
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = r.nowTime()
	}
	r.states[state] = &copied
	return nil
}

func (r *InMemoryRepo) Take(state string) (*AuthFlowState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	authState, ok := r.states[state]
	if !ok {
		return nil, apperrors.ErrStateNotFound
	}
	delete(r.states, state)
	if r.expired(authState) {
		return nil, apperrors.ErrStateNotFound
	}
	return authState, nil
}

// Delete removes an auth flow state
func (r *InMemoryRepo) Delete(state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, state)
	return nil
}

func (r *InMemoryRepo) expired(s *AuthFlowState) bool {
	return r.timeout > 0 && r.nowTime().Sub(s.CreatedAt) > r.timeout
}

func (r *InMemoryRepo) pruneLocked() {
	for state, s := range r.states {
		if r.expired(s) {
			delete(r.states, state)
		}
	}
}
