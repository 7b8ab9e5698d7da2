package authsession

import (
	"net/url"
	"strings"
)

// CallbackInput is what the user handed back after consenting: either the bare
// authorization code or the values extracted from the redirect URL.
type CallbackInput struct {
	Code     string
	State    string
	HasState bool
	FromURL  bool
}

// ParseCallbackInput accepts a bare code, a full callback URL, a path with a
// query string, or a raw query string.
func ParseCallbackInput(input string) (CallbackInput, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return CallbackInput{}, callbackErrorf("input is empty")
	}

	if !looksLikeCallbackURL(input) {
		return parseBareCode(input)
	}

	values, err := callbackValues(input)
	if err != nil {
		return CallbackInput{}, err
	}

	if providerErr := values.Get("error"); providerErr != "" {
		if desc := values.Get("error_description"); desc != "" {
			return CallbackInput{}, callbackErrorf("authorization was refused: %s (%s)", providerErr, desc)
		}
		return CallbackInput{}, callbackErrorf("authorization was refused: %s", providerErr)
	}

	code := strings.TrimSpace(values.Get("code"))
	if code == "" {
		return CallbackInput{}, callbackErrorf("callback URL has no code parameter")
	}

	result := CallbackInput{Code: code, FromURL: true}
	if values.Has("state") {
		result.State = values.Get("state")
		result.HasState = true
	}
	return result, nil
}

func looksLikeCallbackURL(input string) bool {
	if strings.Contains(input, "://") {
		return true
	}
	if strings.HasPrefix(input, "/") || strings.HasPrefix(input, "?") {
		return true
	}
	return strings.Contains(input, "code=") || strings.Contains(input, "error=")
}

// callbackValues reads the query, falling back to the fragment for providers
// using response_mode=fragment.
func callbackValues(input string) (url.Values, error) {
	if !strings.Contains(input, "://") && !strings.HasPrefix(input, "/") {
		// A URL pasted without its scheme, e.g. localhost:8501/cb?code=X, keeps only its query.
		if _, query, found := strings.Cut(input, "?"); found {
			input = query
		}
		values, err := url.ParseQuery(input)
		if err != nil {
			return nil, callbackErrorf("cannot parse query string: %v", err)
		}
		return values, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, callbackErrorf("cannot parse callback URL: %v", err)
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, callbackErrorf("cannot parse callback query: %v", err)
	}
	if !values.Has("code") && !values.Has("error") && u.Fragment != "" {
		fragmentValues, err := url.ParseQuery(u.Fragment)
		if err == nil {
			return fragmentValues, nil
		}
	}
	return values, nil
}

func parseBareCode(input string) (CallbackInput, error) {
	if strings.ContainsAny(input, " \t\r\n") {
		return CallbackInput{}, callbackErrorf("authorization code contains whitespace")
	}
	code := input
	if strings.Contains(code, "%") {
		unescaped, err := url.QueryUnescape(code)
		if err != nil {
			return CallbackInput{}, callbackErrorf("authorization code is not valid percent-encoding")
		}
		code = unescaped
	}
	return CallbackInput{Code: code}, nil
}
