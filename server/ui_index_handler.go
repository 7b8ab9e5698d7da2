package server

import (
	"net/http"

	"github.com/jrsteele09/go-youtube-uploader/youtube"
	"github.com/rs/zerolog/log"
)

type indexPage struct {
	sessionStatus
	AppName          string
	Error            string
	CallbackURL      string
	HasDefaultClient bool
	Categories       []youtube.Category
	DefaultCategory  string
	Privacies        []youtube.PrivacyStatus
	DefaultPrivacy   youtube.PrivacyStatus
}

// IndexHandler renders the uploader page for the browser session
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := indexPage{
			sessionStatus:    s.sessionStatus(sessionFromContext(r)),
			AppName:          s.config.GetAppName(),
			Error:            r.URL.Query().Get("error"),
			CallbackURL:      s.callbackURL(),
			HasDefaultClient: s.config.GetClientSecretFile() != "",
			Categories:       youtube.Categories(),
			DefaultCategory:  youtube.DefaultCategoryID,
			Privacies:        []youtube.PrivacyStatus{youtube.PrivacyPrivate, youtube.PrivacyUnlisted, youtube.PrivacyPublic},
			DefaultPrivacy:   youtube.DefaultPrivacyStatus,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render index template")
		}
	}
}
