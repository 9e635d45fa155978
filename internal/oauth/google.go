// Package oauth implements identity-provider clients for federated sign-in.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dtroode/authkeeper/internal/model"
)

const ProviderGoogle = "google"

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Provider redirects users to an identity provider and resolves the
// callback code into a profile.
type Provider interface {
	Name() string
	AuthURL(state string) string
	FetchProfile(ctx context.Context, code string) (model.FederatedProfile, error)
}

type Google struct {
	conf        *oauth2.Config
	userinfoURL string
}

func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userinfoURL: googleUserinfoURL,
	}
}

func (g *Google) Name() string {
	return ProviderGoogle
}

func (g *Google) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

type googleUserinfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// FetchProfile exchanges the authorization code for a token and loads
// the userinfo document with it.
func (g *Google) FetchProfile(ctx context.Context, code string) (model.FederatedProfile, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return model.FederatedProfile{}, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	client := g.conf.Client(ctx, tok)
	resp, err := client.Get(g.userinfoURL)
	if err != nil {
		return model.FederatedProfile{}, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return model.FederatedProfile{}, fmt.Errorf("userinfo request failed: status %d: %s", resp.StatusCode, body)
	}

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return model.FederatedProfile{}, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	if info.ID == "" || info.Email == "" {
		return model.FederatedProfile{}, fmt.Errorf("userinfo response missing required fields")
	}

	return model.FederatedProfile{
		Provider: ProviderGoogle,
		ID:       info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	}, nil
}
