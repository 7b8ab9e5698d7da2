package authsession

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// pendingFlow is the AuthorizationRequest/AuthState pair awaiting its callback.
type pendingFlow struct {
	state    string
	request  AuthorizationRequest
	oauth    *oauth2.Config
	issuedAt time.Time
}

// Session drives one OAuth 2.0 authorization-code grant at a time and keeps the
// resulting credentials. It is owned by a single user session; Begin and
// Complete serialise on the session mutex.
type Session struct {
	mu sync.Mutex

	httpClient     *http.Client
	requestTimeout time.Duration
	newState       func() (string, error)
	nowTime        func() time.Time

	pending       *pendingFlow
	completed     *oauth2.Config
	credentials   *Credentials
	redeemedCodes map[string]struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.httpClient = client
	}
}

// WithRequestTimeout bounds each token endpoint round trip. Zero leaves the transport default.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.requestTimeout = timeout
	}
}

// WithStateGenerator replaces the random state generator (primarily for testing).
func WithStateGenerator(gen func() (string, error)) Option {
	return func(s *Session) {
		s.newState = gen
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Session) {
		s.nowTime = nowFunc
	}
}

// New creates a Session with no pending flow and no credentials.
func New(options ...Option) *Session {
	s := &Session{
		newState:      GenerateState,
		nowTime:       time.Now,
		redeemedCodes: make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Begin starts a new authorization attempt and returns the provider URL to
// present to the user together with the state it embeds. Any previously pending
// attempt is invalidated, even if this one fails.
func (s *Session) Begin(clientJSON []byte, req AuthorizationRequest) (authURL string, state string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil

	clientConfig, err := ParseClientConfig(clientJSON)
	if err != nil {
		return "", "", err
	}
	req, err = req.normalize()
	if err != nil {
		return "", "", err
	}
	req.RedirectURI, err = clientConfig.ResolveRedirectURI(req.RedirectURI)
	if err != nil {
		return "", "", err
	}
	oauthConfig, err := clientConfig.OAuth2Config(req.Scopes, req.RedirectURI)
	if err != nil {
		return "", "", err
	}

	state, err = s.newState()
	if err != nil {
		return "", "", fmt.Errorf("[Begin] %w", err)
	}
	if state == "" {
		return "", "", errors.New("[Begin] state generator returned an empty state")
	}

	s.pending = &pendingFlow{
		state:    state,
		request:  req,
		oauth:    oauthConfig,
		issuedAt: s.nowTime(),
	}
	return oauthConfig.AuthCodeURL(state, req.authCodeOptions()...), state, nil
}

// Complete finishes the pending attempt. input is either the bare authorization
// code or the full callback URL; a callback URL must carry the pending state.
func (s *Session) Complete(ctx context.Context, input string) (*Credentials, error) {
	callback, err := ParseCallbackInput(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Codes are single-use at the provider; replaying one must not reach the token endpoint.
	if _, used := s.redeemedCodes[callback.Code]; used {
		return nil, &TokenExchangeError{
			Code:        "invalid_grant",
			Description: "authorization code has already been redeemed",
		}
	}

	flow := s.pending
	if flow == nil {
		return nil, ErrNoPendingFlow
	}

	// A pasted bare code carries no state. Any callback URL must return the
	// issued state, and the comparison, successful or not, consumes the flow.
	if callback.FromURL || callback.HasState {
		s.pending = nil
		if !callback.HasState || !statesEqual(callback.State, flow.state) {
			return nil, ErrStateMismatch
		}
	}

	tok, err := s.exchange(ctx, flow.oauth, callback.Code)
	if err != nil {
		return nil, err
	}

	creds := credentialsFromToken(tok, flow.request.Scopes)
	s.pending = nil
	s.completed = flow.oauth
	s.credentials = creds
	s.redeemedCodes[callback.Code] = struct{}{}

	copied := *creds
	return &copied, nil
}

func (s *Session) exchange(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, error) {
	ctx = s.clientContext(ctx)
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, classifyExchangeError(err)
	}
	return tok, nil
}

func (s *Session) clientContext(ctx context.Context) context.Context {
	if s.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	return ctx
}

func classifyExchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		exchangeErr := &TokenExchangeError{
			Code:        retrieveErr.ErrorCode,
			Description: retrieveErr.ErrorDescription,
			Err:         err,
		}
		if retrieveErr.Response != nil {
			exchangeErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return exchangeErr
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	// e.g. a 200 response without an access token
	return &TokenExchangeError{Err: err}
}

// Credentials returns a copy of the credentials obtained by the last completed flow.
func (s *Session) Credentials() (*Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credentials == nil {
		return nil, false
	}
	copied := *s.credentials
	return &copied, true
}

// Pending reports whether an authorization attempt is awaiting its callback.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// PendingState returns the state of the pending attempt, or "" if there is none.
func (s *Session) PendingState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ""
	}
	return s.pending.state
}

// PendingSince returns when the pending attempt was started.
func (s *Session) PendingSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return time.Time{}, false
	}
	return s.pending.issuedAt, true
}

// RedirectURI returns the redirect URI of the pending attempt, falling back to
// the one of the last completed attempt.
func (s *Session) RedirectURI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.pending != nil:
		return s.pending.request.RedirectURI
	case s.completed != nil:
		return s.completed.RedirectURL
	}
	return ""
}

// ClientID returns the OAuth client id of the completed flow.
func (s *Session) ClientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed == nil {
		return ""
	}
	return s.completed.ClientID
}

// TokenSource returns a token source that refreshes the session's credentials
// when a refresh token was issued.
func (s *Session) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credentials == nil || s.completed == nil {
		return nil, ErrNotAuthenticated
	}
	return s.completed.TokenSource(s.clientContext(ctx), s.credentials.Token()), nil
}

// HTTPClient returns a client authorising every request with the session's credentials.
func (s *Session) HTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := s.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(s.clientContext(ctx), ts), nil
}

// Reset drops the pending attempt and any credentials.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.completed = nil
	s.credentials = nil
}
