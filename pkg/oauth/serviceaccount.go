package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	oauthjwt "golang.org/x/oauth2/jwt"
)

// ServiceAccount is the subset of a Google service-account key file the
// JWT grant needs.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// ParseServiceAccount decodes a key file and checks the fields the grant
// depends on.
func ParseServiceAccount(raw []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("oauth.ParseServiceAccount: %w", err)
	}
	var missing []string
	if sa.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if sa.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if sa.PrivateKey == "" {
		missing = append(missing, "private_key")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("oauth.ParseServiceAccount: missing %s", strings.Join(missing, ", "))
	}
	if sa.TokenURI == "" {
		sa.TokenURI = GoogleTokenURL
	}
	return &sa, nil
}

// JWTSource signs an RS256 assertion with the service-account key and trades
// it for an access token.
type JWTSource struct {
	*source
}

// NewJWTSource checks the private key up front, so a broken key file is
// reported at startup rather than on the first exchange.
func NewJWTSource(sa *ServiceAccount, scopes []string, hc *http.Client) (*JWTSource, error) {
	if sa == nil {
		return nil, errors.New("oauth.NewJWTSource: nil service account")
	}
	if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey)); err != nil {
		return nil, fmt.Errorf("oauth.NewJWTSource parse private key: %w", err)
	}
	jc := &oauthjwt.Config{
		Email:        sa.ClientEmail,
		PrivateKey:   []byte(sa.PrivateKey),
		PrivateKeyID: sa.PrivateKeyID,
		Scopes:       scopes,
		TokenURL:     sa.TokenURI,
	}
	ctx := clientContext(hc)
	fetch := func() (*oauth2.Token, error) { return jc.TokenSource(ctx).Token() }
	return &JWTSource{newSource("Google service account", fetch)}, nil
}
