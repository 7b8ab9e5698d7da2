package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-youtube-uploader/authsession"
	"github.com/jrsteele09/go-youtube-uploader/drive"
	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
	"github.com/jrsteele09/go-youtube-uploader/youtube"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

const (
	// sessionCookieName carries the signed id of the browser session
	sessionCookieName = "uploader_session"
	contentTypeJSON   = "application/json"
)

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) error {
	maxAge := s.config.GetMaxSessionAge()
	value, err := s.signer.Sign(sessionID, maxAge)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode, // Lax so the provider's redirect to /callback carries it
		MaxAge:   int(maxAge.Seconds()),
	})
	return nil
}

// wantsJSON reports whether the caller expects JSON instead of a page redirect.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, RouteAPIPrefix) ||
		strings.Contains(r.Header.Get("Accept"), contentTypeJSON)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}

// writeJSONError writes an error response in the OAuth2 error shape
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// respond writes v as JSON for API callers and redirects browsers to path.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any, path string) {
	if wantsJSON(r) {
		writeJSON(w, status, v)
		return
	}
	redirectSuccess(w, r, path)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", r.URL.Path).Msg("Request failed")
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request rejected")
	}

	if wantsJSON(r) {
		writeJSONError(w, code, err.Error(), status)
		return
	}
	redirectWithError(w, r, RouteIndex, err.Error())
}

// classifyError maps an error onto an HTTP status and a machine readable code.
func classifyError(err error) (int, string) {
	var exchangeErr *authsession.TokenExchangeError
	var apiErr *googleapi.Error

	switch {
	case errors.As(err, &exchangeErr):
		if exchangeErr.Code != "" {
			return http.StatusBadRequest, exchangeErr.Code
		}
		return http.StatusBadRequest, "token_exchange_failed"
	case errors.Is(err, authsession.ErrConfig):
		return http.StatusBadRequest, "invalid_client_config"
	case errors.Is(err, authsession.ErrCallbackParse):
		return http.StatusBadRequest, "invalid_callback"
	case errors.Is(err, authsession.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not_authenticated"
	case errors.Is(err, authsession.ErrStateMismatch), errors.Is(err, apperrors.ErrSessionMismatch):
		return http.StatusForbidden, "state_mismatch"
	case errors.Is(err, authsession.ErrNoPendingFlow):
		return http.StatusConflict, "no_pending_flow"
	case errors.Is(err, authsession.ErrNetwork):
		return http.StatusBadGateway, "network_error"
	case errors.Is(err, youtube.ErrInvalidMetadata),
		errors.Is(err, drive.ErrInvalidFolder),
		errors.Is(err, apperrors.ErrInvalidRequest),
		errors.Is(err, apperrors.ErrMissingClientJSON),
		errors.Is(err, apperrors.ErrNoChannelSelected),
		errors.Is(err, apperrors.ErrUnknownChannel):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, apperrors.ErrRequestTooLarge):
		return http.StatusRequestEntityTooLarge, "request_too_large"
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrStateNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrShuttingDown):
		return http.StatusServiceUnavailable, "shutting_down"
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError sends the browser back to path with the message in ?error=.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(errorMsg), http.StatusSeeOther)
}
