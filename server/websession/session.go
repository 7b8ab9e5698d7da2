package websession

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-youtube-uploader/authsession"
	"github.com/jrsteele09/go-youtube-uploader/identity"
	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
	"github.com/jrsteele09/go-youtube-uploader/youtube"
)

// Mode is how the user returns the authorization code.
type Mode string

const (
	// ModePaste shows the authorization link and expects the code or URL to be pasted back.
	ModePaste Mode = "paste"
	// ModeRedirect sends the browser to the provider and receives it at /callback.
	ModeRedirect Mode = "redirect"
)

// Session is the server side state of one browser. It owns exactly one
// authorization session and the channel picked for uploads.
type Session struct {
	ID        string
	Auth      *authsession.Session
	CreatedAt time.Time

	mu                sync.RWMutex
	lastSeen          time.Time
	authURL           string
	mode              Mode
	channels          []youtube.Channel
	selectedChannelID string
	identity          *identity.Identity
}

func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// SetPendingAuth records the authorization link shown to the user.
func (s *Session) SetPendingAuth(authURL string, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authURL = authURL
	s.mode = mode
}

// PendingAuth returns the link of the attempt still awaiting its code.
func (s *Session) PendingAuth() (string, Mode, bool) {
	if !s.Auth.Pending() {
		return "", "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authURL, s.mode, s.authURL != ""
}

// SignedIn drops the pending link and any data from a previous account.
func (s *Session) SignedIn(id *identity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authURL = ""
	s.channels = nil
	s.selectedChannelID = ""
	s.identity = id
}

func (s *Session) Identity() *identity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// SetChannels stores the account's channels. A single channel is selected automatically
// and a selection that no longer exists is dropped.
func (s *Session) SetChannels(channels []youtube.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append([]youtube.Channel(nil), channels...)
	if len(channels) == 1 {
		s.selectedChannelID = channels[0].ID
		return
	}
	if _, ok := s.findLocked(s.selectedChannelID); !ok {
		s.selectedChannelID = ""
	}
}

func (s *Session) Channels() []youtube.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]youtube.Channel(nil), s.channels...)
}

func (s *Session) SelectChannel(channelID string) (youtube.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.findLocked(channelID)
	if !ok {
		return youtube.Channel{}, apperrors.Wrapf(apperrors.ErrUnknownChannel, "channel %q", channelID)
	}
	s.selectedChannelID = channelID
	return ch, nil
}

func (s *Session) SelectedChannel() (youtube.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(s.selectedChannelID)
}

// Logout resets the authorization session and forgets everything tied to the account.
func (s *Session) Logout() {
	s.Auth.Reset()
	s.SignedIn(nil)
}

func (s *Session) findLocked(channelID string) (youtube.Channel, bool) {
	if channelID == "" {
		return youtube.Channel{}, false
	}
	for _, ch := range s.channels {
		if ch.ID == channelID {
			return ch, true
		}
	}
	return youtube.Channel{}, false
}
