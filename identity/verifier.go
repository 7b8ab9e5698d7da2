// Package identity verifies the ID token Google returns when the openid scope was granted.
package identity

import (
	"context"
	"crypto"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// GoogleIssuer is the issuer of Google ID tokens.
const GoogleIssuer = "https://accounts.google.com"

// Identity is the signed-in account described by a verified ID token.
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier runs OIDC discovery against issuer and verifies tokens issued to clientID.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("[identity NewVerifier] clientID is required")
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("[identity NewVerifier] failed to create OIDC provider: %w", err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewStaticVerifier verifies tokens against a fixed set of public keys, without discovery.
func NewStaticVerifier(issuer, clientID string, keys ...crypto.PublicKey) (*Verifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("[identity NewStaticVerifier] clientID is required")
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("[identity NewStaticVerifier] at least one key is required")
	}
	keySet := &oidc.StaticKeySet{PublicKeys: keys}
	return &Verifier{verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: clientID})}, nil
}

// Verify checks signature, issuer, audience and expiry of rawIDToken.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	if rawIDToken == "" {
		return nil, fmt.Errorf("no ID token")
	}
	token, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("ID token verification failed: %w", err)
	}

	var id Identity
	if err := token.Claims(&id); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}
	id.Subject = token.Subject
	return &id, nil
}
