package config

import (
	"os"
	"time"
)

type OAuthConfig interface {
	GetClientSecretFile() string
	GetClientJSON() ([]byte, error)
	GetScopes() []string
	GetAccessType() string
	GetPrompt() string
	GetOAuthRequestTimeout() time.Duration
	GetAuthStateTimeout() time.Duration
	GetOIDCIssuer() string
	GetRequestIdentity() bool
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

var defaultScopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube",
}

// GetClientSecretFile is an optional client_secret.json used when a browser does not upload one.
func (OAuth) GetClientSecretFile() string {
	return GetEnv("CLIENT_SECRET_FILE", "")
}

// GetClientJSON reads GetClientSecretFile; it returns nil without error when none is configured.
func (o OAuth) GetClientJSON() ([]byte, error) {
	path := o.GetClientSecretFile()
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func (OAuth) GetScopes() []string {
	return GetEnvList("OAUTH_SCOPES", defaultScopes)
}

func (OAuth) GetAccessType() string {
	return GetEnv("OAUTH_ACCESS_TYPE", "offline")
}

func (OAuth) GetPrompt() string {
	return GetEnv("OAUTH_PROMPT", "consent")
}

func (OAuth) GetOAuthRequestTimeout() time.Duration {
	return GetEnvDuration("OAUTH_REQUEST_TIMEOUT", 30*time.Second)
}

// GetAuthStateTimeout bounds how long a hosted callback may take to arrive.
func (OAuth) GetAuthStateTimeout() time.Duration {
	return GetEnvDuration("AUTH_STATE_TIMEOUT", 15*time.Minute)
}

func (OAuth) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "https://accounts.google.com")
}

// GetRequestIdentity adds openid and email scopes so the signed-in account can be shown.
func (OAuth) GetRequestIdentity() bool {
	return GetEnvBool("REQUEST_IDENTITY", false)
}
