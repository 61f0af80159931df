package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNoCredentials is returned when neither an access token nor a client id
// and secret are configured.
var ErrNoCredentials = errors.New("no spotify credentials: set SPOTIFY_ACCESS_TOKEN or SPOTIFY_ID and SPOTIFY_SECRET")

// Credentials identify the application to the Web API.
type Credentials struct {
	AccessToken  string
	ClientID     string
	ClientSecret string
	TokenURL     string // defaults to the accounts service token endpoint
}

// TokenSource returns a source yielding one token for the whole run.
// A supplied access token is used as is; otherwise a single token is obtained
// through the client credentials grant. The token is never refreshed.
func TokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	if creds.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: creds.AccessToken,
			TokenType:   "Bearer",
		}), nil
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrNoCredentials
	}

	tokenURL := creds.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
	}
	token, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining access token: %w", err)
	}
	return oauth2.StaticTokenSource(token), nil
}

// NewHTTPClient returns an http.Client that authorizes every request with
// a token from ts.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, ts)
}
