package websession

type Repo interface {
	// Create starts a new browser session with a fresh authorization session.
	Create() (*Session, error)
	Get(sessionID string) (*Session, error)
	Delete(sessionID string) error
}
