package authflowrepo

import "time"

// AuthFlowState links a pending state token to the browser session that issued it,
// so the hosted callback can find the right authorization session.
type AuthFlowState struct {
	SessionID   string
	RedirectURI string
	CreatedAt   time.Time
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	// Take returns the entry and removes it, so a state resolves at most once.
	Take(state string) (*AuthFlowState, error)
	Delete(state string) error
}
