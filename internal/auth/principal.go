package auth

import (
	tokens "github.com/dropDatabas3/entrada/internal/security/token"
	"github.com/dropDatabas3/entrada/internal/util"
)

// Principal es la identidad autenticada de la sesión actual. Es efímero:
// se reconstruye por request desde el user id guardado en la sesión.
type Principal struct {
	UserID      string
	Email       string
	AccessToken string
}

// SessionAuthHash deriva el valor de integridad de sesión a partir del
// access token vigente. Si el token rota, el hash guardado en las
// sesiones viejas deja de coincidir y esas sesiones mueren solas.
func (p *Principal) SessionAuthHash() string {
	return tokens.SHA256Base64URL(p.AccessToken)
}

// String redacta el access token para que un %v accidental no lo filtre.
func (p Principal) String() string {
	return "Principal{user_id=" + p.UserID +
		" email=" + util.MaskEmail(p.Email) +
		" access_token=[redacted]}"
}
