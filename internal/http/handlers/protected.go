package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/entrada/internal/auth"
	httpx "github.com/dropDatabas3/entrada/internal/http"
	"github.com/dropDatabas3/entrada/internal/observability/logger"
	"github.com/dropDatabas3/entrada/internal/session"
	"github.com/dropDatabas3/entrada/internal/store/core"
)

// ProtectedHandler sirve las rutas que dependen de la identidad de la
// sesión. La raíz degrada a anónimo en vez de exigir login.
type ProtectedHandler struct {
	backend  auth.Backend
	sessions *session.Manager
}

func NewProtectedHandler(backend auth.Backend, sessions *session.Manager) *ProtectedHandler {
	return &ProtectedHandler{backend: backend, sessions: sessions}
}

// resolve recarga el principal de la sesión y verifica integridad.
// Devuelve nil para cualquier sesión que no resuelva a una identidad
// válida; las sesiones rotas se borran en el mismo paso. Solo errores
// de infraestructura (store caído) llegan como err.
func (h *ProtectedHandler) resolve(w http.ResponseWriter, r *http.Request) (*auth.Principal, error) {
	sid, d, found := h.sessions.Read(r)
	if !found || !d.Authenticated() {
		return nil, nil
	}
	log := logger.From(r.Context())

	p, err := h.backend.ReloadPrincipal(r.Context(), d.UserID)
	if err != nil {
		if errors.Is(err, core.ErrLinkMissing) {
			// usuario sin vínculo al provider: sesión irreparable
			log.Error("sesión sin provider link, se fuerza logout",
				logger.UserID(d.UserID), logger.Err(err))
			h.sessions.Clear(w, sid)
			return nil, nil
		}
		return nil, err
	}
	if p == nil {
		// el usuario ya no existe
		log.Warn("sesión huérfana, se fuerza logout", logger.UserID(d.UserID))
		h.sessions.Clear(w, sid)
		return nil, nil
	}
	if p.SessionAuthHash() != d.AuthHash {
		// el access token guardado cambió desde el login
		log.Warn("hash de integridad no coincide, se fuerza logout",
			logger.UserID(d.UserID), logger.Err(auth.ErrSessionIntegrity))
		h.sessions.Clear(w, sid)
		return nil, nil
	}
	return p, nil
}

// Home responde la raíz con un saludo si hay sesión válida o con la
// invitación a loguearse si no.
//
//	GET /
func (h *ProtectedHandler) Home(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolve(w, r)
	if err != nil {
		logger.From(r.Context()).Error("no se pudo resolver la sesión", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if p == nil {
		fmt.Fprint(w, "You're not logged in.\nVisit /auth/google/login to do so.")
		return
	}
	fmt.Fprintf(w, "Hello, %s!", p.Email)
}

// Me devuelve la identidad de la sesión o 401.
//
//	GET /v1/me
func (h *ProtectedHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolve(w, r)
	if err != nil {
		logger.From(r.Context()).Error("no se pudo resolver la sesión", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno")
		return
	}
	if p == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "no hay sesión activa")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"user_id": p.UserID,
		"email":   p.Email,
	})
}
