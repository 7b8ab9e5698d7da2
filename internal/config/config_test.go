package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-youtube-uploader/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"PORT", "ENV", "BASE_URL", "OAUTH_SCOPES", "CLIENT_SECRET_FILE", "CORS_ALLOWED_ORIGINS", "UPLOAD_TIMEOUT"} {
		t.Setenv(v, "")
	}
	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:8080", c.GetBaseURL())
	require.Equal(t, []string{
		"https://www.googleapis.com/auth/youtube.upload",
		"https://www.googleapis.com/auth/youtube",
	}, c.GetScopes())
	require.Equal(t, 2*time.Hour, c.GetUploadTimeout())
	require.Empty(t, c.GetAllowedOrigins())

	raw, err := c.GetClientJSON()
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestOverrides(t *testing.T) {
	dir := t.TempDir()
	secretFile := filepath.Join(dir, "client_secret.json")
	require.NoError(t, os.WriteFile(secretFile, []byte(`{"web":{}}`), 0o600))

	t.Setenv("PORT", ":9000")
	t.Setenv("BASE_URL", "https://uploader.example.com/")
	t.Setenv("OAUTH_SCOPES", "a, b ,,c")
	t.Setenv("OAUTH_REQUEST_TIMEOUT", "5s")
	t.Setenv("AUTH_STATE_TIMEOUT", "bogus")
	t.Setenv("CLIENT_SECRET_FILE", secretFile)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,*")
	t.Setenv("REQUEST_IDENTITY", "true")
	t.Setenv("UPLOAD_CHUNK_SIZE", "1048576")

	c := config.New()
	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "https://uploader.example.com", c.GetBaseURL())
	require.Equal(t, []string{"a", "b", "c"}, c.GetScopes())
	require.Equal(t, 5*time.Second, c.GetOAuthRequestTimeout())
	require.Equal(t, 15*time.Minute, c.GetAuthStateTimeout())
	require.True(t, c.GetRequestIdentity())
	require.Equal(t, 1<<20, c.GetUploadChunkSize())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://a.example.com"))
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("*"))

	raw, err := c.GetClientJSON()
	require.NoError(t, err)
	require.Equal(t, `{"web":{}}`, string(raw))
}
