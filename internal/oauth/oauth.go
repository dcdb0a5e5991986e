// Package oauth define el contrato que implementan los providers de
// login social y la taxonomía de errores del borde con el IdP.
package oauth

import (
	"context"
	"errors"

	"github.com/dropDatabas3/entrada/internal/store/core"
)

// AuthorizationRequest es el resultado de iniciar un login: la URL a la
// que mandamos el browser y el state anti-CSRF embebido en ella.
type AuthorizationRequest struct {
	URL   string
	State string
}

// Provider son las tres llamadas externas contra el IdP.
type Provider interface {
	Name() string

	// BuildAuthorizationRequest genera un state fresco y arma la URL de
	// autorización. No tiene efectos más allá de generar el token.
	BuildAuthorizationRequest() (*AuthorizationRequest, error)

	// ExchangeCode canjea el authorization code por un access token.
	ExchangeCode(ctx context.Context, code string) (string, error)

	// FetchProfile pide el userinfo con el bearer token.
	FetchProfile(ctx context.Context, accessToken string) (*core.Profile, error)
}

// ExchangeError: falla dura en el canje de code (red, rechazo del IdP,
// respuesta malformada). Nunca representa un login rechazado.
type ExchangeError struct{ Err error }

func (e *ExchangeError) Error() string { return "oauth: code exchange: " + e.Err.Error() }
func (e *ExchangeError) Unwrap() error { return e.Err }

// ProfileError: falla dura en el fetch de userinfo o payload incompleto.
type ProfileError struct{ Err error }

func (e *ProfileError) Error() string { return "oauth: profile fetch: " + e.Err.Error() }
func (e *ProfileError) Unwrap() error { return e.Err }

// IsExchangeError / IsProfileError evitan repetir errors.As en los callers.
func IsExchangeError(err error) bool {
	var ee *ExchangeError
	return errors.As(err, &ee)
}

func IsProfileError(err error) bool {
	var pe *ProfileError
	return errors.As(err, &pe)
}
