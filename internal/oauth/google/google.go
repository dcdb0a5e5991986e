// Package google implementa el provider de Google sobre OAuth 2.0.
// El canje de code va por golang.org/x/oauth2; el userinfo es una llamada
// HTTP propia porque x/oauth2 no modela ese endpoint.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	xoauth "github.com/dropDatabas3/entrada/internal/oauth"
	tokens "github.com/dropDatabas3/entrada/internal/security/token"
	"github.com/dropDatabas3/entrada/internal/store/core"
	"github.com/dropDatabas3/entrada/internal/util"
)

const stateBytes = 32

// Config llega armada desde internal/config; acá no se lee ENV.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
}

type Client struct {
	oauth       oauth2.Config
	userInfoURL string
	http        *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string { return "google" }

func (c *Client) BuildAuthorizationRequest() (*xoauth.AuthorizationRequest, error) {
	state, err := tokens.GenerateOpaqueToken(stateBytes)
	if err != nil {
		return nil, err
	}
	return &xoauth.AuthorizationRequest{
		URL:   c.oauth.AuthCodeURL(state),
		State: state,
	}, nil
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	// x/oauth2 toma el http.Client del contexto; inyectamos el nuestro
	// para que aplique el timeout.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", &xoauth.ExchangeError{Err: err}
	}
	if tok.AccessToken == "" {
		return "", &xoauth.ExchangeError{Err: fmt.Errorf("no access_token in response")}
	}
	return tok.AccessToken, nil
}

// userInfo es el payload del userinfo endpoint de Google (OIDC standard claims).
type userInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*core.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, &xoauth.ProfileError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &xoauth.ProfileError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &xoauth.ProfileError{
			Err: fmt.Errorf("userinfo http %d (token %s)", resp.StatusCode, util.MaskToken(accessToken)),
		}
	}

	var ui userInfo
	if err := json.NewDecoder(resp.Body).Decode(&ui); err != nil {
		return nil, &xoauth.ProfileError{Err: fmt.Errorf("decode userinfo: %w", err)}
	}
	if ui.Sub == "" || ui.Email == "" {
		return nil, &xoauth.ProfileError{Err: fmt.Errorf("incomplete profile: sub=%q email empty=%v", ui.Sub, ui.Email == "")}
	}

	return &core.Profile{
		Subject:       ui.Sub,
		Email:         ui.Email,
		EmailVerified: ui.EmailVerified,
		GivenName:     ui.GivenName,
		FamilyName:    ui.FamilyName,
		Picture:       ui.Picture,
	}, nil
}
