package auth

import (
	"context"
	"errors"
	"fmt"

	"flipquiz/internal/config"
	"flipquiz/internal/store"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("sign-in is not configured")

// Provider runs the authorization code flow against the identity provider.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (store.Identity, error)
}

// Google signs users in with their Google account and reads the profile
// from the userinfo endpoint.
type Google struct {
	oauth *oauth2.Config
}

func NewGoogle(cfg config.Config) (*Google, error) {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, ErrNotConfigured
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				googleoauth.UserinfoEmailScope,
				googleoauth.UserinfoProfileScope,
				googleoauth.OpenIDScope,
			},
		},
	}, nil
}

func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (g *Google) Exchange(ctx context.Context, code string) (store.Identity, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return store.Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(g.oauth.TokenSource(ctx, token)))
	if err != nil {
		return store.Identity{}, fmt.Errorf("userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return store.Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Id == "" {
		return store.Identity{}, errors.New("userinfo returned no subject")
	}
	return store.Identity{
		UID:         "google:" + info.Id,
		Email:       info.Email,
		DisplayName: info.Name,
		PhotoURL:    info.Picture,
	}, nil
}
