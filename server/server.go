package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-youtube-uploader/internal/config"
	"github.com/jrsteele09/go-youtube-uploader/server/authflowrepo"
	"github.com/jrsteele09/go-youtube-uploader/server/websession"
	"github.com/jrsteele09/go-youtube-uploader/sessiontoken"
	"github.com/jrsteele09/go-youtube-uploader/uploadjobs"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	signer    *sessiontoken.Signer
	sessions  websession.Repo
	authFlows authflowrepo.Repo
	jobs      uploadjobs.Repo

	newYouTube  YouTubeFactory
	newDrive    DriveFactory
	newVerifier VerifierFactory

	verifiers     map[string]IdentityVerifier // client id -> verifier
	verifiersLock sync.RWMutex

	// Background uploads run under uploadsCtx until Shutdown cancels it.
	uploads      sync.WaitGroup
	uploadsLock  sync.Mutex
	uploadsCtx   context.Context
	stopUploads  context.CancelFunc
	shuttingDown bool
}

type Option func(*Server)

// WithYouTubeFactory replaces how the YouTube client is built (primarily for testing).
func WithYouTubeFactory(f YouTubeFactory) Option {
	return func(s *Server) {
		s.newYouTube = f
	}
}

// WithDriveFactory replaces how the Drive client is built (primarily for testing).
func WithDriveFactory(f DriveFactory) Option {
	return func(s *Server) {
		s.newDrive = f
	}
}

// WithVerifierFactory replaces how ID token verifiers are built (primarily for testing).
func WithVerifierFactory(f VerifierFactory) Option {
	return func(s *Server) {
		s.newVerifier = f
	}
}

func New(config config.Config, sessions websession.Repo, authFlows authflowrepo.Repo, jobs uploadjobs.Repo, options ...Option) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("[Server New] config is required")
	}
	if sessions == nil || authFlows == nil || jobs == nil {
		return nil, fmt.Errorf("[Server New] session, auth flow and job repositories are required")
	}

	if config.GetSessionSecret() == "" {
		log.Warn().Msg("SESSION_SECRET is not set, session cookies will not survive a restart")
	}
	signer, err := sessiontoken.NewSigner(config.GetSessionSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session signer: %w", err)
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    config,
		signer:    signer,
		sessions:  sessions,
		authFlows: authFlows,
		jobs:      jobs,
		verifiers: make(map[string]IdentityVerifier),
	}
	s.env = config.GetEnv()
	s.uploadsCtx, s.stopUploads = context.WithCancel(context.Background())
	s.newYouTube = s.defaultYouTubeFactory
	s.newDrive = defaultDriveFactory
	s.newVerifier = s.defaultVerifierFactory
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// Shutdown cancels the uploads still running, which marks their jobs failed,
// and waits for them to finish or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.uploadsLock.Lock()
	s.shuttingDown = true
	s.uploadsLock.Unlock()
	s.stopUploads()

	done := make(chan struct{})
	go func() {
		s.uploads.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("[Server Shutdown] uploads still running: %w", ctx.Err())
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// verifierFor returns the cached ID token verifier of clientID, building it on first use.
func (s *Server) verifierFor(ctx context.Context, clientID string) (IdentityVerifier, error) {
	s.verifiersLock.RLock()
	v, exists := s.verifiers[clientID]
	s.verifiersLock.RUnlock()
	if exists {
		return v, nil
	}

	v, err := s.newVerifier(ctx, clientID)
	if err != nil {
		return nil, err
	}
	s.verifiersLock.Lock()
	s.verifiers[clientID] = v
	s.verifiersLock.Unlock()
	return v, nil
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
