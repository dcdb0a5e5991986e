package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/entrada/internal/observability/logger"
)

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		// SameSite=None requiere Secure=true en navegadores modernos.
		// No forzamos Secure acá para no romper http://localhost.
		return http.SameSiteNoneMode
	default:
		logger.L().Warn("session: SameSite desconocido, usando Lax")
		return http.SameSiteLaxMode
	}
}

// buildSessionCookie construye la cookie de sesión con flags de seguridad.
// HttpOnly siempre; Secure/SameSite/Domain según config.
func buildSessionCookie(name, value, domain, sameSite string, secure bool, ttl time.Duration) *http.Cookie {
	ss := parseSameSite(sameSite)
	if ss == http.SameSiteNoneMode && !secure {
		logger.L().Warn("session: SameSite=None sin Secure; algunos navegadores rechazan la cookie")
	}
	now := time.Now().UTC()

	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: ss,
	}
	if domain != "" {
		c.Domain = domain
	}
	return c
}

// buildDeletionCookie devuelve una cookie que "borra" la sesión del
// browser. Mismos atributos para que el user-agent la sobreescriba.
func buildDeletionCookie(name, domain, sameSite string, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: parseSameSite(sameSite),
	}
	if domain != "" {
		c.Domain = domain
	}
	return c
}
