package websession_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-youtube-uploader/authsession"
	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
	"github.com/jrsteele09/go-youtube-uploader/identity"
	"github.com/jrsteele09/go-youtube-uploader/server/websession"
	"github.com/jrsteele09/go-youtube-uploader/youtube"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := websession.NewInMemoryRepo(time.Hour, websession.WithNowTime(func() time.Time { return now }))

	s, err := repo.Create()
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	require.NotNil(t, s.Auth)

	got, err := repo.Get(s.ID)
	require.NoError(t, err)
	require.Same(t, s, got)

	other, err := repo.Create()
	require.NoError(t, err)
	require.NotSame(t, s.Auth, other.Auth, "each browser owns its own authorization session")

	_, err = repo.Get("")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	_, err = repo.Get("unknown")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	t.Run("activity keeps the session alive", func(t *testing.T) {
		now = now.Add(50 * time.Minute)
		_, err := repo.Get(s.ID)
		require.NoError(t, err)
		now = now.Add(50 * time.Minute)
		_, err = repo.Get(s.ID)
		require.NoError(t, err)
	})

	t.Run("idle sessions expire", func(t *testing.T) {
		now = now.Add(61 * time.Minute)
		_, err := repo.Get(s.ID)
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
		_, err = repo.Get(s.ID)
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		fresh, err := repo.Create()
		require.NoError(t, err)
		require.NoError(t, repo.Delete(fresh.ID))
		_, err = repo.Get(fresh.ID)
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}

func TestSession_Channels(t *testing.T) {
	repo := websession.NewInMemoryRepo(0)
	s, err := repo.Create()
	require.NoError(t, err)

	_, ok := s.SelectedChannel()
	require.False(t, ok)

	s.SetChannels([]youtube.Channel{{ID: "UC1", Title: "Only"}})
	ch, ok := s.SelectedChannel()
	require.True(t, ok, "a single channel is selected automatically")
	require.Equal(t, "UC1", ch.ID)

	s.SetChannels([]youtube.Channel{{ID: "UC1"}, {ID: "UC2"}})
	ch, ok = s.SelectedChannel()
	require.True(t, ok, "selection survives a refresh that still contains it")
	require.Equal(t, "UC1", ch.ID)

	_, err = s.SelectChannel("UC3")
	require.ErrorIs(t, err, apperrors.ErrUnknownChannel)

	ch, err = s.SelectChannel("UC2")
	require.NoError(t, err)
	require.Equal(t, "UC2", ch.ID)

	s.SetChannels([]youtube.Channel{{ID: "UC1"}, {ID: "UC4"}})
	_, ok = s.SelectedChannel()
	require.False(t, ok)

	s.SignedIn(&identity.Identity{Email: "gopher@example.com"})
	require.Empty(t, s.Channels())
	require.Equal(t, "gopher@example.com", s.Identity().Email)

	s.Logout()
	require.Nil(t, s.Identity())
	_, ok = s.Auth.Credentials()
	require.False(t, ok)
}

func TestSession_PendingAuth(t *testing.T) {
	repo := websession.NewInMemoryRepo(0)
	s, err := repo.Create()
	require.NoError(t, err)

	s.SetPendingAuth("https://accounts.example.com/auth?state=x", websession.ModePaste)
	_, _, ok := s.PendingAuth()
	require.False(t, ok, "no link without a pending authorization")

	clientJSON := []byte(`{"web":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost:8080/callback"]}}`)
	authURL, _, err := s.Auth.Begin(clientJSON, authsession.AuthorizationRequest{
		Scopes: []string{"https://www.googleapis.com/auth/youtube.upload"},
	})
	require.NoError(t, err)
	s.SetPendingAuth(authURL, websession.ModeRedirect)

	link, mode, ok := s.PendingAuth()
	require.True(t, ok)
	require.Equal(t, authURL, link)
	require.Equal(t, websession.ModeRedirect, mode)
}
