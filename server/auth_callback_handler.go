package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
	"github.com/rs/zerolog/log"
)

// OAuthCallbackHandler receives the provider redirect in redirect mode. The state
// must have been issued to the browser session presenting the cookie.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)

		if state := r.URL.Query().Get("state"); state != "" {
			flow, err := s.authFlows.Take(state)
			if err == nil && flow.SessionID != sess.ID {
				log.Warn().Str("session_id", sess.ID).Msg("Callback state was issued to another browser session")
				s.respondError(w, r, apperrors.ErrSessionMismatch)
				return
			}
		}

		// Complete reads code, state and error from the query, exactly as it would from a pasted URL.
		// A callback without state is refused there and consumes the pending attempt.
		callbackURL := s.config.GetBaseURL() + r.URL.RequestURI()
		if err := s.completeAuthorization(r.Context(), sess, callbackURL); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respond(w, r, http.StatusOK, s.sessionStatus(sess), RouteIndex)
	}
}
