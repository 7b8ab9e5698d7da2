package authflowrepo_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
	"github.com/jrsteele09/go-youtube-uploader/server/authflowrepo"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := authflowrepo.NewInMemoryRepo(10*time.Minute, authflowrepo.WithNowTime(func() time.Time { return now }))

	require.ErrorIs(t, repo.Upsert("", &authflowrepo.AuthFlowState{SessionID: "s"}), apperrors.ErrInvalidRequest)
	require.ErrorIs(t, repo.Upsert("state", &authflowrepo.AuthFlowState{}), apperrors.ErrInvalidRequest)

	require.NoError(t, repo.Upsert("state-1", &authflowrepo.AuthFlowState{SessionID: "session-1", RedirectURI: "http://localhost:8080/callback"}))

	t.Run("upsert stamps creation time", func(t *testing.T) {
		require.NoError(t, repo.Upsert("state-0", &authflowrepo.AuthFlowState{SessionID: "session-0"}))
		got, err := repo.Take("state-0")
		require.NoError(t, err)
		require.Equal(t, "session-0", got.SessionID)
		require.Equal(t, now, got.CreatedAt)
	})

	t.Run("take is single use", func(t *testing.T) {
		require.NoError(t, repo.Upsert("state-2", &authflowrepo.AuthFlowState{SessionID: "session-2"}))
		got, err := repo.Take("state-2")
		require.NoError(t, err)
		require.Equal(t, "session-2", got.SessionID)

		_, err = repo.Take("state-2")
		require.ErrorIs(t, err, apperrors.ErrStateNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Upsert("state-3", &authflowrepo.AuthFlowState{SessionID: "session-3"}))
		require.NoError(t, repo.Delete("state-3"))
		_, err := repo.Take("state-3")
		require.ErrorIs(t, err, apperrors.ErrStateNotFound)
	})

	t.Run("expired entries are not returned", func(t *testing.T) {
		now = now.Add(11 * time.Minute)
		_, err := repo.Take("state-1")
		require.ErrorIs(t, err, apperrors.ErrStateNotFound)
	})
}
