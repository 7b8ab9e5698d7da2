package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-youtube-uploader/authsession"
	"github.com/jrsteele09/go-youtube-uploader/drive"
	"github.com/jrsteele09/go-youtube-uploader/identity"
	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
	"github.com/jrsteele09/go-youtube-uploader/internal/utils"
	"github.com/jrsteele09/go-youtube-uploader/server/websession"
	"github.com/jrsteele09/go-youtube-uploader/uploadjobs"
	"github.com/jrsteele09/go-youtube-uploader/youtube"
	"github.com/rs/zerolog/log"
)

type sessionStatus struct {
	Authenticated    bool               `json:"authenticated"`
	Pending          bool               `json:"pending"`
	AuthorizationURL string             `json:"authorization_url,omitempty"`
	Mode             websession.Mode    `json:"mode,omitempty"`
	PendingSince     *time.Time         `json:"pending_since,omitempty"`
	RedirectURI      string             `json:"redirect_uri,omitempty"`
	Scopes           []string           `json:"scopes,omitempty"`
	HasRefreshToken  bool               `json:"has_refresh_token"`
	Expiry           *time.Time         `json:"expiry,omitempty"`
	DriveEnabled     bool               `json:"drive_enabled"`
	Identity         *identity.Identity `json:"identity,omitempty"`
	Channels         []youtube.Channel  `json:"channels"`
	SelectedChannel  *youtube.Channel   `json:"selected_channel,omitempty"`
	Uploads          []uploadjobs.Job   `json:"uploads"`
}

// sessionStatus never exposes tokens, only what the page needs to render.
func (s *Server) sessionStatus(sess *websession.Session) sessionStatus {
	status := sessionStatus{
		Pending:     sess.Auth.Pending(),
		RedirectURI: sess.Auth.RedirectURI(),
		Identity:    sess.Identity(),
		Channels:    sess.Channels(),
		Uploads:     s.jobs.ListBySession(sess.ID),
	}
	if authURL, mode, ok := sess.PendingAuth(); ok {
		status.AuthorizationURL = authURL
		status.Mode = mode
	}
	if since, ok := sess.Auth.PendingSince(); ok {
		status.PendingSince = utils.Ptr(since)
	}
	if creds, ok := sess.Auth.Credentials(); ok {
		status.Authenticated = true
		status.Scopes = creds.Scopes
		status.HasRefreshToken = creds.HasRefreshToken()
		status.DriveEnabled = creds.HasScope(drive.ReadonlyScope)
		if !creds.Expiry.IsZero() {
			status.Expiry = utils.Ptr(creds.Expiry)
		}
	}
	if ch, ok := sess.SelectedChannel(); ok {
		status.SelectedChannel = utils.Ptr(ch)
	}
	return status
}

func (s *Server) SessionStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.sessionStatus(sessionFromContext(r)))
	}
}

func (s *Server) CategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"categories":      youtube.Categories(),
			"default":         youtube.DefaultCategoryID,
			"privacyStatuses": []youtube.PrivacyStatus{youtube.PrivacyPublic, youtube.PrivacyPrivate, youtube.PrivacyUnlisted},
		})
	}
}

type channelsResponse struct {
	Channels []youtube.Channel `json:"channels"`
	Selected *youtube.Channel  `json:"selected,omitempty"`
}

// ChannelsHandler lists the account's channels. They are fetched on sign in and
// again when refresh=1 is passed or none are cached.
func (s *Server) ChannelsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)
		channels := sess.Channels()
		if len(channels) == 0 || truthy(r.URL.Query().Get("refresh")) {
			var err error
			if channels, err = s.refreshChannels(r.Context(), sess); err != nil {
				s.respondError(w, r, err)
				return
			}
		}

		resp := channelsResponse{Channels: channels}
		if ch, ok := sess.SelectedChannel(); ok {
			resp.Selected = &ch
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) SelectChannelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)
		if err := parseForm(r, s.config.GetUploadMaxMemory()); err != nil {
			s.respondError(w, r, err)
			return
		}
		ch, err := sess.SelectChannel(r.FormValue("channel_id"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		log.Info().Str("session_id", sess.ID).Str("channel_id", ch.ID).Msg("Channel selected")
		writeJSON(w, http.StatusOK, channelsResponse{Channels: sess.Channels(), Selected: &ch})
	}
}

type driveVideosResponse struct {
	FolderID string       `json:"folder_id"`
	Files    []drive.File `json:"files"`
}

// DriveVideosHandler lists the videos in ?folder=, a folder id or link.
func (s *Server) DriveVideosHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)
		folderID, err := drive.ParseFolderID(r.URL.Query().Get("folder"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		svc, err := s.driveFor(r.Context(), sess)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		files, err := svc.ListVideos(r.Context(), folderID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, driveVideosResponse{FolderID: folderID, Files: files})
	}
}

func (s *Server) driveFor(ctx context.Context, sess *websession.Session) (DriveService, error) {
	creds, ok := sess.Auth.Credentials()
	if !ok {
		return nil, authsession.ErrNotAuthenticated
	}
	if !creds.HasScope(drive.ReadonlyScope) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "Drive access was not granted, sign in again with Google Drive enabled")
	}
	client, err := sess.Auth.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return s.newDrive(ctx, client)
}
