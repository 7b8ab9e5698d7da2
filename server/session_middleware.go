package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-youtube-uploader/authsession"
	"github.com/jrsteele09/go-youtube-uploader/server/websession"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the browser's *websession.Session
const ContextKeySession ContextKey = "web_session"

// WebSessionMiddleware attaches the browser session named by the signed cookie,
// starting a new one when the cookie is missing, invalid or expired.
func (s *Server) WebSessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessionFromCookie(r)
		if sess == nil {
			var err error
			sess, err = s.sessions.Create()
			if err != nil {
				log.Err(err).Msg("Failed to create browser session")
				writeJSONError(w, "server_error", "failed to create session", http.StatusInternalServerError)
				return
			}
			if err := s.SetSessionCookie(w, r, sess.ID); err != nil {
				log.Err(err).Msg("Failed to sign session cookie")
				writeJSONError(w, "server_error", "failed to create session", http.StatusInternalServerError)
				return
			}
		}

		ctx := context.WithValue(r.Context(), ContextKeySession, sess)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) sessionFromCookie(r *http.Request) *websession.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	sessionID, err := s.signer.Parse(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Ignoring session cookie")
		return nil
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("Session cookie refers to no session")
		return nil
	}
	return sess
}

// sessionFromContext returns the session attached by WebSessionMiddleware.
func sessionFromContext(r *http.Request) *websession.Session {
	sess, _ := r.Context().Value(ContextKeySession).(*websession.Session)
	return sess
}

// RequireCredentials rejects requests from browsers that have not completed authorization.
func (s *Server) RequireCredentials(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)
		if sess == nil {
			s.respondError(w, r, authsession.ErrNotAuthenticated)
			return
		}
		if _, ok := sess.Auth.Credentials(); !ok {
			s.respondError(w, r, authsession.ErrNotAuthenticated)
			return
		}
		next(w, r)
	}
}
