// Package oauth obtains Google access tokens: the refresh-token grant used by
// Gmail and Drive, and the service-account JWT-bearer grant used by Firebase.
// Tokens are cached until shortly before expiry; the cache is the only
// mutable state shared between concurrent invocations.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
	"golang.org/x/oauth2"
)

// GoogleTokenURL is Google's OAuth 2.0 token endpoint.
const GoogleTokenURL = "https://oauth2.googleapis.com/token"

const refreshMargin = time.Minute

// fetchFunc adapts a function to oauth2.TokenSource.
type fetchFunc func() (*oauth2.Token, error)

func (f fetchFunc) Token() (*oauth2.Token, error) { return f() }

// source caches the tokens of an uncached fetch. oauth2.ReuseTokenSource
// serialises refreshes, so concurrent callers trigger at most one exchange.
type source struct {
	provider string
	ts       oauth2.TokenSource
}

func newSource(provider string, fetch fetchFunc) *source {
	checked := fetchFunc(func() (*oauth2.Token, error) {
		tok, err := fetch()
		if err != nil {
			return nil, err
		}
		if tok.AccessToken == "" {
			return nil, errors.New("token response carries no access_token")
		}
		return tok, nil
	})
	return &source{provider: provider, ts: oauth2.ReuseTokenSourceWithExpiry(nil, checked, refreshMargin)}
}

// Token returns a valid access token. The exchange runs on the source's HTTP
// client and its timeout; ctx only short-circuits a call already cancelled.
func (s *source) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := s.ts.Token()
	if err != nil {
		return "", tokenError(s.provider, err)
	}
	return tok.AccessToken, nil
}

// tokenError maps a failed exchange onto an upstream error. A rejected grant
// carries the endpoint's status; anything else is a transport failure.
func tokenError(provider string, err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return types.ErrUpstream(provider, 0, fmt.Sprintf("%s token request failed: %v", provider, err), err)
	}
	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	reason := re.ErrorDescription
	if reason == "" {
		reason = re.ErrorCode
	}
	if reason == "" {
		var body struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(re.Body, &body)
		reason = body.ErrorDescription
		if reason == "" {
			reason = body.Error
		}
	}
	if reason == "" {
		reason = http.StatusText(status)
	}
	te := types.ErrUpstream(provider, status, fmt.Sprintf("%s token exchange failed: %d - %s", provider, status, reason), nil)
	te.Detail = string(re.Body)
	return te
}

// clientContext carries hc to the oauth2 exchange.
func clientContext(hc *http.Client) context.Context {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return context.WithValue(context.Background(), oauth2.HTTPClient, hc)
}
