package authsession

import (
	"strings"

	"golang.org/x/oauth2"
)

type AccessType string

const (
	AccessTypeOnline  AccessType = "online"
	AccessTypeOffline AccessType = "offline"
)

type Prompt string

const (
	PromptNone          Prompt = "none"
	PromptConsent       Prompt = "consent"
	PromptSelectAccount Prompt = "select_account"
)

// AuthorizationRequest describes one authorization attempt.
type AuthorizationRequest struct {
	Scopes      []string
	RedirectURI string // empty selects the first URI registered for the client
	AccessType  AccessType
	Prompt      Prompt
}

// normalize trims and de-duplicates scopes, applies defaults and validates the enums.
func (r AuthorizationRequest) normalize() (AuthorizationRequest, error) {
	seen := make(map[string]struct{}, len(r.Scopes))
	scopes := make([]string, 0, len(r.Scopes))
	for _, scope := range r.Scopes {
		for _, s := range strings.Fields(scope) {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			scopes = append(scopes, s)
		}
	}
	if len(scopes) == 0 {
		return r, configErrorf("at least one scope is required")
	}
	r.Scopes = scopes

	switch r.AccessType {
	case "":
		r.AccessType = AccessTypeOffline
	case AccessTypeOnline, AccessTypeOffline:
	default:
		return r, configErrorf("unsupported access_type %q", r.AccessType)
	}

	switch r.Prompt {
	case "":
		r.Prompt = PromptConsent
	case PromptNone, PromptConsent, PromptSelectAccount:
	default:
		return r, configErrorf("unsupported prompt %q", r.Prompt)
	}
	return r, nil
}

func (r AuthorizationRequest) authCodeOptions() []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("access_type", string(r.AccessType)),
		oauth2.SetAuthURLParam("prompt", string(r.Prompt)),
	}
}
