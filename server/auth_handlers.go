package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-youtube-uploader/authsession"
	"github.com/jrsteele09/go-youtube-uploader/drive"
	"github.com/jrsteele09/go-youtube-uploader/identity"
	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
	"github.com/jrsteele09/go-youtube-uploader/internal/utils"
	"github.com/jrsteele09/go-youtube-uploader/server/authflowrepo"
	"github.com/jrsteele09/go-youtube-uploader/server/websession"
	"github.com/jrsteele09/go-youtube-uploader/youtube"
	"github.com/rs/zerolog/log"
)

const maxClientJSONSize = 1 << 20

var identityScopes = []string{"openid", "email", "profile"}

type beginResponse struct {
	AuthorizationURL string          `json:"authorization_url"`
	State            string          `json:"state"`
	Mode             websession.Mode `json:"mode"`
	RedirectURI      string          `json:"redirect_uri"`
}

// BeginAuthHandler starts a new authorization attempt for the browser session.
// Fields: client_secret (file) or client_config (text), mode, redirect_uri,
// access_type, prompt and drive.
func (s *Server) BeginAuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)
		if err := parseForm(r, s.config.GetUploadMaxMemory()); err != nil {
			s.respondError(w, r, err)
			return
		}

		clientJSON, err := s.clientJSONFromRequest(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		mode := websession.Mode(formValue(r, "mode", string(websession.ModePaste)))
		if mode != websession.ModePaste && mode != websession.ModeRedirect {
			s.respondError(w, r, fmt.Errorf("%w: unknown mode %q", apperrors.ErrInvalidRequest, mode))
			return
		}
		redirectURI := strings.TrimSpace(r.FormValue("redirect_uri"))
		if mode == websession.ModeRedirect && redirectURI == "" {
			redirectURI = s.callbackURL()
		}

		req := authsession.AuthorizationRequest{
			Scopes:      s.requestedScopes(truthy(r.FormValue("drive"))),
			RedirectURI: redirectURI,
			AccessType:  authsession.AccessType(formValue(r, "access_type", s.config.GetAccessType())),
			Prompt:      authsession.Prompt(formValue(r, "prompt", s.config.GetPrompt())),
		}

		// Last begin wins: the previous state must no longer resolve at /callback.
		if previous := sess.Auth.PendingState(); previous != "" {
			_ = s.authFlows.Delete(previous)
		}
		authURL, state, err := sess.Auth.Begin(clientJSON, req)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		err = s.authFlows.Upsert(state, &authflowrepo.AuthFlowState{
			SessionID:   sess.ID,
			RedirectURI: sess.Auth.RedirectURI(),
		})
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		sess.SetPendingAuth(authURL, mode)

		log.Info().Str("session_id", sess.ID).Str("mode", string(mode)).Strs("scopes", req.Scopes).Msg("Authorization started")

		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, beginResponse{
				AuthorizationURL: authURL,
				State:            state,
				Mode:             mode,
				RedirectURI:      sess.Auth.RedirectURI(),
			})
			return
		}
		if mode == websession.ModeRedirect {
			redirectSuccess(w, r, authURL)
			return
		}
		redirectSuccess(w, r, RouteIndex)
	}
}

// CompleteAuthHandler finishes the pending attempt with a pasted code or callback URL.
func (s *Server) CompleteAuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)
		if err := parseForm(r, s.config.GetUploadMaxMemory()); err != nil {
			s.respondError(w, r, err)
			return
		}

		if err := s.completeAuthorization(r.Context(), sess, r.FormValue("code")); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respond(w, r, http.StatusOK, s.sessionStatus(sess), RouteIndex)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)
		if state := sess.Auth.PendingState(); state != "" {
			_ = s.authFlows.Delete(state)
		}
		sess.Logout()
		log.Info().Str("session_id", sess.ID).Msg("Logged out")
		s.respond(w, r, http.StatusOK, s.sessionStatus(sess), RouteIndex)
	}
}

// completeAuthorization runs Complete and keeps the state index in step with the session.
func (s *Server) completeAuthorization(ctx context.Context, sess *websession.Session, input string) error {
	pendingState := sess.Auth.PendingState()
	creds, err := sess.Auth.Complete(ctx, input)
	if pendingState != "" && !sess.Auth.Pending() {
		_ = s.authFlows.Delete(pendingState)
	}
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("Authorization failed")
		return err
	}
	s.afterSignIn(ctx, sess, creds)
	return nil
}

// afterSignIn records who signed in and loads their channels. Neither step blocks the sign in.
func (s *Server) afterSignIn(ctx context.Context, sess *websession.Session, creds *authsession.Credentials) {
	var id *identity.Identity
	if creds.IDToken != "" {
		verifier, err := s.verifierFor(ctx, sess.Auth.ClientID())
		if err == nil {
			id, err = verifier.Verify(ctx, creds.IDToken)
		}
		if err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("Could not verify ID token")
			id = nil
		}
	}
	sess.SignedIn(id)

	log.Info().
		Str("session_id", sess.ID).
		Str("email", utils.Value(id).Email).
		Bool("refresh_token", creds.HasRefreshToken()).
		Time("expiry", creds.Expiry).
		Msg("Authorization completed")

	if _, err := s.refreshChannels(ctx, sess); err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to list channels after sign in")
	}
}

func (s *Server) refreshChannels(ctx context.Context, sess *websession.Session) ([]youtube.Channel, error) {
	client, err := sess.Auth.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	yt, err := s.newYouTube(ctx, client)
	if err != nil {
		return nil, err
	}
	channels, err := yt.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	sess.SetChannels(channels)
	return channels, nil
}

func (s *Server) requestedScopes(withDrive bool) []string {
	scopes := append([]string(nil), s.config.GetScopes()...)
	if withDrive {
		scopes = append(scopes, drive.ReadonlyScope)
	}
	if s.config.GetRequestIdentity() {
		scopes = append(scopes, identityScopes...)
	}
	return scopes
}

func (s *Server) callbackURL() string {
	return s.config.GetBaseURL() + RouteCallback
}

// clientJSONFromRequest takes the client configuration from an uploaded file, a
// pasted JSON document or the configured CLIENT_SECRET_FILE, in that order.
func (s *Server) clientJSONFromRequest(r *http.Request) ([]byte, error) {
	if file, _, err := r.FormFile("client_secret"); err == nil {
		defer file.Close()
		raw, err := io.ReadAll(io.LimitReader(file, maxClientJSONSize+1))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read client_secret: %v", apperrors.ErrInvalidRequest, err)
		}
		if len(raw) > maxClientJSONSize {
			return nil, fmt.Errorf("%w: client_secret exceeds %d bytes", apperrors.ErrRequestTooLarge, maxClientJSONSize)
		}
		if len(strings.TrimSpace(string(raw))) > 0 {
			return raw, nil
		}
	}

	if text := strings.TrimSpace(r.FormValue("client_config")); text != "" {
		return []byte(text), nil
	}

	raw, err := s.config.GetClientJSON()
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read the configured client secret file")
	}
	if len(raw) == 0 {
		return nil, apperrors.ErrMissingClientJSON
	}
	return raw, nil
}

func parseForm(r *http.Request, maxMemory int64) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("%w: failed to parse form: %v", apperrors.ErrInvalidRequest, err)
	}
	return nil
}

func formValue(r *http.Request, key, defaultValue string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return defaultValue
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}
