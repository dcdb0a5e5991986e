package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/entrada/internal/auth"
	httpx "github.com/dropDatabas3/entrada/internal/http"
	"github.com/dropDatabas3/entrada/internal/observability/logger"
	"github.com/dropDatabas3/entrada/internal/session"
	"github.com/dropDatabas3/entrada/internal/util"
)

// AuthHandler maneja el flujo de login social por sesión: redirect al
// provider con state fresco y callback con verificación anti-CSRF.
type AuthHandler struct {
	backends     map[string]auth.Backend
	sessions     *session.Manager
	postLoginURL string
}

func NewAuthHandler(backends map[string]auth.Backend, sessions *session.Manager, postLoginURL string) *AuthHandler {
	if postLoginURL == "" {
		postLoginURL = "/"
	}
	return &AuthHandler{backends: backends, sessions: sessions, postLoginURL: postLoginURL}
}

func (h *AuthHandler) backend(r *http.Request) (string, auth.Backend, bool) {
	name := chi.URLParam(r, "provider")
	b, ok := h.backends[name]
	return name, b, ok
}

// sanitizeNext acepta solo paths relativos. Cualquier URL absoluta o
// protocol-relative se descarta para no abrir un open redirect.
func sanitizeNext(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}

// Start arranca el Authorization Code flow: genera el par (URL, state),
// guarda el state en la sesión y redirige al provider.
//
//	GET /auth/{provider}/login?next=/dest
func (h *AuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	name, b, ok := h.backend(r)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "unknown_provider", "provider no configurado")
		return
	}
	log := logger.From(r.Context()).With(logger.Provider(name))

	req, err := b.StartLogin()
	if err != nil {
		log.Error("no se pudo generar el authorization request", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo iniciar el login")
		return
	}

	next := sanitizeNext(r.URL.Query().Get("next"))

	// El state viaja en la sesión, nunca en otra cookie suelta. Si ya
	// hay sesión (anónima o autenticada) reusamos el sid; si no, se
	// emite una sesión anónima nueva.
	if sid, d, found := h.sessions.Read(r); found {
		d.CSRFState = req.State
		d.NextURL = next
		err = h.sessions.Update(sid, d)
	} else {
		_, err = h.sessions.Issue(w, &session.Data{CSRFState: req.State, NextURL: next})
	}
	if err != nil {
		log.Error("no se pudo persistir el flow state", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo iniciar el login")
		return
	}

	http.Redirect(w, r, req.URL, http.StatusFound)
}

// Callback cierra el flujo: valida el state contra la sesión, canjea el
// code y promueve la sesión a autenticada con rotación de sid.
//
//	GET /auth/{provider}/callback?code=...&state=...
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	name, b, ok := h.backend(r)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "unknown_provider", "provider no configurado")
		return
	}
	log := logger.From(r.Context()).With(logger.Provider(name))

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		// el provider canceló el flujo (acceso denegado, etc.)
		log.Warn("callback con error del provider", zap.String("provider_error", e))
		httpx.ObserveLogin(name, "rejected")
		h.clearFlowState(r)
		httpx.WriteError(w, http.StatusUnauthorized, "login_rejected", "el provider rechazó la autenticación")
		return
	}

	code, newState := q.Get("code"), q.Get("state")
	if code == "" || newState == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_callback", "faltan code o state")
		return
	}

	sid, d, found := h.sessions.Read(r)
	if !found || d.CSRFState == "" {
		// sin sesión con flow state pendiente el callback no es verificable
		httpx.WriteError(w, http.StatusBadRequest, "missing_flow_state", "no hay login en curso para esta sesión")
		return
	}

	// state de un solo uso: se consume antes de tocar al provider,
	// falle o no el resto del callback.
	oldState := d.CSRFState
	next := sanitizeNext(d.NextURL)
	d.CSRFState = ""
	d.NextURL = ""
	if err := h.sessions.Update(sid, d); err != nil {
		log.Error("no se pudo limpiar el flow state", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno de sesión")
		return
	}

	principal, err := b.Authenticate(r.Context(), auth.Credentials{
		Code:     code,
		OldState: oldState,
		NewState: newState,
	})
	if err != nil {
		log.Error("fallo el intercambio con el provider", logger.Err(err))
		httpx.ObserveLogin(name, "error")
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo completar el login")
		return
	}
	if principal == nil {
		log.Warn("state inválido en callback, posible CSRF")
		httpx.ObserveLogin(name, "rejected")
		httpx.WriteError(w, http.StatusUnauthorized, "login_rejected", "state inválido")
		return
	}

	// promoción: sid nuevo, sesión con identidad y hash de integridad
	if _, err := h.sessions.Rotate(w, sid, &session.Data{
		UserID:   principal.UserID,
		AuthHash: principal.SessionAuthHash(),
	}); err != nil {
		log.Error("no se pudo rotar la sesión", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno de sesión")
		return
	}

	httpx.ObserveLogin(name, "success")
	log.Info("login completado",
		logger.UserID(principal.UserID),
		logger.Email(util.MaskEmail(principal.Email)),
	)

	if next == "" {
		next = h.postLoginURL
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout borra la sesión actual, tenga o no identidad.
//
//	GET /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid, _, found := h.sessions.Read(r); found {
		h.sessions.Clear(w, sid)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// clearFlowState consume el state pendiente cuando el callback termina
// sin llegar a Authenticate.
func (h *AuthHandler) clearFlowState(r *http.Request) {
	sid, d, found := h.sessions.Read(r)
	if !found || (d.CSRFState == "" && d.NextURL == "") {
		return
	}
	d.CSRFState = ""
	d.NextURL = ""
	if err := h.sessions.Update(sid, d); err != nil {
		logger.From(r.Context()).Warn("no se pudo limpiar el flow state", logger.Err(err))
	}
}
