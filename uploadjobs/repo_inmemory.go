package uploadjobs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
// Finished jobs are kept for the retention period after their last update.
type InMemoryRepo struct {
	mu        sync.RWMutex
	jobs      map[string]*Job
	retention time.Duration
	nowTime   func() time.Time
}

var _ Repo = (*InMemoryRepo)(nil)

type Option func(*InMemoryRepo)

func WithNowTime(now func() time.Time) Option {
	return func(r *InMemoryRepo) {
		r.nowTime = now
	}
}

// WithRetention drops finished jobs once they have not changed for d. Zero keeps them.
func WithRetention(d time.Duration) Option {
	return func(r *InMemoryRepo) {
		r.retention = d
	}
}

func NewInMemoryRepo(options ...Option) *InMemoryRepo {
	r := &InMemoryRepo{
		jobs:    make(map[string]*Job),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *InMemoryRepo) Create(job Job) (Job, error) {
	if job.SessionID == "" {
		return Job{}, apperrors.Wrapf(apperrors.ErrInvalidRequest, "job needs a session")
	}
	now := r.nowTime()
	job.ID = uuid.NewString()
	job.Status = StatusQueued
	job.CreatedAt = now
	job.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	stored := job
	r.jobs[job.ID] = &stored
	return job, nil
}

func (r *InMemoryRepo) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok || r.expired(job) {
		return Job{}, apperrors.Wrapf(apperrors.ErrNotFound, "upload job %s", id)
	}
	return *job, nil
}

func (r *InMemoryRepo) Update(id string, fn func(*Job)) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, apperrors.Wrapf(apperrors.ErrNotFound, "upload job %s", id)
	}
	fn(job)
	job.UpdatedAt = r.nowTime()
	return *job, nil
}

// ListBySession returns the session's jobs, newest first.
func (r *InMemoryRepo) ListBySession(sessionID string) []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := []Job{}
	for _, job := range r.jobs {
		if job.SessionID == sessionID && !r.expired(job) {
			jobs = append(jobs, *job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

func (r *InMemoryRepo) expired(job *Job) bool {
	return r.retention > 0 && job.Done() && r.nowTime().Sub(job.UpdatedAt) > r.retention
}

func (r *InMemoryRepo) pruneLocked() {
	for id, job := range r.jobs {
		if r.expired(job) {
			delete(r.jobs, id)
		}
	}
}
