package uploadjobs

type Repo interface {
	// Create assigns an id and timestamps and stores job as queued.
	Create(job Job) (Job, error)
	Get(id string) (Job, error)
	// Update applies fn to the stored job under the repo lock.
	Update(id string, fn func(*Job)) (Job, error)
	ListBySession(sessionID string) []Job
}
