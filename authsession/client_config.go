package authsession

import (
	"encoding/json"
	"net"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ClientKind is the top level key of a Google client secret file.
type ClientKind string

const (
	ClientKindWeb       ClientKind = "web"
	ClientKindInstalled ClientKind = "installed"
)

// ClientConfig is a parsed OAuth client secret file as downloaded from the
// Google Cloud Console.
type ClientConfig struct {
	Kind         ClientKind
	ClientID     string
	ClientSecret string
	RedirectURIs []string
	AuthURI      string
	TokenURI     string

	raw []byte
}

type clientCredentials struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
}

// ParseClientConfig validates a client secret JSON document. Either the "web" or the
// "installed" shape is accepted; client id, secret and at least one redirect URI are required.
func ParseClientConfig(raw []byte) (*ClientConfig, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, configErrorf("client configuration is empty")
	}

	var doc struct {
		Web       *clientCredentials `json:"web"`
		Installed *clientCredentials `json:"installed"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, configErrorf("client configuration is not valid JSON: %v", err)
	}

	var (
		creds *clientCredentials
		kind  ClientKind
	)
	switch {
	case doc.Web != nil:
		creds, kind = doc.Web, ClientKindWeb
	case doc.Installed != nil:
		creds, kind = doc.Installed, ClientKindInstalled
	default:
		return nil, configErrorf(`expected a "web" or "installed" client`)
	}

	if strings.TrimSpace(creds.ClientID) == "" {
		return nil, configErrorf("client_id is missing")
	}
	if strings.TrimSpace(creds.ClientSecret) == "" {
		return nil, configErrorf("client_secret is missing")
	}

	redirects := make([]string, 0, len(creds.RedirectURIs))
	for _, uri := range creds.RedirectURIs {
		if uri = strings.TrimSpace(uri); uri != "" {
			redirects = append(redirects, uri)
		}
	}
	if len(redirects) == 0 {
		return nil, configErrorf("redirect_uris is empty")
	}

	cfg := &ClientConfig{
		Kind:         kind,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURIs: redirects,
		AuthURI:      creds.AuthURI,
		TokenURI:     creds.TokenURI,
		raw:          append([]byte(nil), raw...),
	}
	if cfg.AuthURI == "" {
		cfg.AuthURI = google.Endpoint.AuthURL
	}
	if cfg.TokenURI == "" {
		cfg.TokenURI = google.Endpoint.TokenURL
	}
	return cfg, nil
}

// ResolveRedirectURI returns the redirect URI to use for a flow. An empty
// request selects the first registered URI.
func (c *ClientConfig) ResolveRedirectURI(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return c.RedirectURIs[0], nil
	}
	for _, registered := range c.RedirectURIs {
		if registered == requested {
			return requested, nil
		}
		if c.Kind == ClientKindInstalled && loopbackCompatible(registered, requested) {
			return requested, nil
		}
	}
	return "", configErrorf("redirect URI %q is not registered for this client", requested)
}

// OAuth2Config builds the oauth2 configuration for one flow.
func (c *ClientConfig) OAuth2Config(scopes []string, redirectURI string) (*oauth2.Config, error) {
	conf, err := google.ConfigFromJSON(c.raw, scopes...)
	if err != nil {
		return nil, configErrorf("%v", err)
	}
	conf.RedirectURL = redirectURI
	// client_id and client_secret travel in the request body, never retried as a header.
	conf.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	if conf.Endpoint.AuthURL == "" {
		conf.Endpoint.AuthURL = c.AuthURI
	}
	if conf.Endpoint.TokenURL == "" {
		conf.Endpoint.TokenURL = c.TokenURI
	}
	return conf, nil
}

// loopbackCompatible applies Google's rule for installed apps: a registered
// loopback redirect accepts any port and path on the same loopback host.
func loopbackCompatible(registered, requested string) bool {
	reg, err := url.Parse(registered)
	if err != nil || reg.Scheme != "http" {
		return false
	}
	req, err := url.Parse(requested)
	if err != nil || req.Scheme != "http" {
		return false
	}
	if !isLoopbackHost(reg.Hostname()) {
		return false
	}
	return reg.Hostname() == req.Hostname()
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
