// Package auth orquesta el flujo de login: comparación del state
// anti-CSRF, canje de code, fetch de perfil y upsert en el store.
// No guarda estado propio; es una fachada sobre Repository + Provider.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dropDatabas3/entrada/internal/oauth"
	"github.com/dropDatabas3/entrada/internal/store/core"
)

// ErrSessionIntegrity: el hash de integridad guardado en la sesión no
// coincide con el derivado del token vigente. El caller debe forzar
// re-login, nunca tratarlo como crash.
var ErrSessionIntegrity = errors.New("auth: session integrity mismatch")

// Credentials son los tres valores del callback: el code del IdP, el
// state leído de la sesión (old) y el state que volvió en la URL (new).
type Credentials struct {
	Code     string
	OldState string
	NewState string
}

// Backend es el contrato del flujo de autenticación. Un provider o
// esquema de credenciales nuevo se agrega como otra implementación sin
// tocar los handlers.
type Backend interface {
	// StartLogin delega en el provider: URL de autorización + state fresco.
	StartLogin() (*oauth.AuthorizationRequest, error)

	// Authenticate corre el callback completo. (nil, nil) es un login
	// rechazado (state no coincide); un error es una falla del sistema.
	Authenticate(ctx context.Context, creds Credentials) (*Principal, error)

	// ReloadPrincipal rehidrata el principal desde el user id de la
	// sesión. (nil, nil) si el id no existe; user sin provider link es
	// un error duro (registro corrupto, no un "no logueado").
	ReloadPrincipal(ctx context.Context, userID string) (*Principal, error)
}

type backend struct {
	repo     core.Repository
	provider oauth.Provider
}

func NewBackend(repo core.Repository, provider oauth.Provider) Backend {
	return &backend{repo: repo, provider: provider}
}

func (b *backend) StartLogin() (*oauth.AuthorizationRequest, error) {
	return b.provider.BuildAuthorizationRequest()
}

func (b *backend) Authenticate(ctx context.Context, creds Credentials) (*Principal, error) {
	// Comparación por valor secreto exacto. Mismatch es un rechazo, no
	// una falla: no se toca ni el provider ni el store.
	if creds.OldState == "" || creds.NewState == "" ||
		subtle.ConstantTimeCompare([]byte(creds.OldState), []byte(creds.NewState)) != 1 {
		return nil, nil
	}

	accessToken, err := b.provider.ExchangeCode(ctx, creds.Code)
	if err != nil {
		return nil, err
	}

	profile, err := b.provider.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user, err := b.repo.UpsertUser(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("auth: upsert user: %w", err)
	}

	// Si esto falla el login entero falla: un user sin link no se puede
	// rehidratar después, así que reportar éxito acá sería mentir.
	if err := b.repo.UpsertProviderLink(ctx, b.provider.Name(), profile.Subject, user.ID, accessToken); err != nil {
		return nil, fmt.Errorf("auth: upsert provider link: %w", err)
	}

	return &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: accessToken,
	}, nil
}

func (b *backend) ReloadPrincipal(ctx context.Context, userID string) (*Principal, error) {
	user, link, err := b.repo.GetUserWithLink(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: link.AccessToken,
	}, nil
}
