package oauth

import (
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// RefreshConfig holds an installed-app client and its long-lived refresh
// token.
type RefreshConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
	HTTPClient   *http.Client
}

// RefreshTokenSource exchanges a refresh token for access tokens.
type RefreshTokenSource struct {
	*source
}

func NewRefreshTokenSource(cfg RefreshConfig) *RefreshTokenSource {
	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint = oauth2.Endpoint{TokenURL: cfg.TokenURL}
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	oc := &oauth2.Config{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret, Endpoint: endpoint}
	ctx := clientContext(cfg.HTTPClient)

	refresh := cfg.RefreshToken
	// A fresh oauth2 source per fetch holds no access token, so every call
	// exchanges; the outer source does the caching. Fetches run under its lock.
	fetch := func() (*oauth2.Token, error) {
		tok, err := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}).Token()
		if err != nil {
			return nil, err
		}
		if tok.RefreshToken != "" {
			refresh = tok.RefreshToken
		}
		return tok, nil
	}
	return &RefreshTokenSource{newSource("Google OAuth", fetch)}
}

// RefreshConfigFrom reads the Google installed-app credentials.
func RefreshConfigFrom(get func(string) string) RefreshConfig {
	return RefreshConfig{
		ClientID:     get("GOOGLE_CLIENT_ID"),
		ClientSecret: get("GOOGLE_CLIENT_SECRET"),
		RefreshToken: get("GOOGLE_REFRESH_TOKEN"),
	}
}

// Missing names the environment variables of unset credentials.
func (c RefreshConfig) Missing() []string {
	var out []string
	if c.ClientID == "" {
		out = append(out, "GOOGLE_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		out = append(out, "GOOGLE_CLIENT_SECRET")
	}
	if c.RefreshToken == "" {
		out = append(out, "GOOGLE_REFRESH_TOKEN")
	}
	return out
}

// Secrets returns the credential values to redact.
func (c RefreshConfig) Secrets() []string {
	return []string{c.ClientSecret, c.RefreshToken}
}
