package session

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	tokens "github.com/dropDatabas3/entrada/internal/security/token"
)

const sidBytes = 32

// Data es el payload de una sesión. Una sesión anónima en medio del
// login lleva csrf_state/next_url; una autenticada lleva user_id y el
// hash de integridad derivado del access token al momento del login.
type Data struct {
	UserID    string `json:"user_id,omitempty"`
	AuthHash  string `json:"auth_hash,omitempty"`
	CSRFState string `json:"csrf_state,omitempty"`
	NextURL   string `json:"next_url,omitempty"`
}

// Authenticated indica si la sesión tiene una identidad asociada.
func (d *Data) Authenticated() bool { return d != nil && d.UserID != "" }

type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
	TTL      time.Duration
}

// Manager es el dueño de la mecánica de sesión: sid opaco en la cookie,
// payload bajo "sid:<sha256(sid)>" en el store, rotación y borrado.
type Manager struct {
	store  Store
	cookie CookieConfig
}

func NewManager(store Store, cookie CookieConfig) *Manager {
	if cookie.Name == "" {
		cookie.Name = "sid"
	}
	if cookie.TTL <= 0 {
		cookie.TTL = 24 * time.Hour
	}
	return &Manager{store: store, cookie: cookie}
}

func (m *Manager) key(rawSID string) string {
	// nunca guardamos el sid crudo como key
	return "sid:" + tokens.SHA256Base64URL(rawSID)
}

// Read busca la sesión del request. ok=false si no hay cookie, la
// sesión expiró o el payload no parsea. La expiración es por
// inactividad: cada lectura exitosa re-arma el TTL completo.
func (m *Manager) Read(r *http.Request) (rawSID string, d *Data, ok bool) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || c.Value == "" {
		return "", nil, false
	}
	b, found := m.store.Get(m.key(c.Value))
	if !found {
		return "", nil, false
	}
	var data Data
	if err := json.Unmarshal(b, &data); err != nil {
		m.store.Delete(m.key(c.Value))
		return "", nil, false
	}
	m.store.Set(m.key(c.Value), b, m.cookie.TTL)
	return c.Value, &data, true
}

// Issue crea una sesión nueva: sid fresco, payload en el store y
// Set-Cookie en la respuesta. Renueva el TTL completo.
func (m *Manager) Issue(w http.ResponseWriter, d *Data) (string, error) {
	rawSID, err := tokens.GenerateOpaqueToken(sidBytes)
	if err != nil {
		return "", err
	}
	if err := m.save(rawSID, d); err != nil {
		return "", err
	}
	http.SetCookie(w, buildSessionCookie(
		m.cookie.Name, rawSID, m.cookie.Domain, m.cookie.SameSite, m.cookie.Secure, m.cookie.TTL,
	))
	return rawSID, nil
}

// Rotate invalida el sid viejo y emite uno nuevo con el payload dado.
// Se usa al promover una sesión anónima a autenticada.
func (m *Manager) Rotate(w http.ResponseWriter, oldRawSID string, d *Data) (string, error) {
	if oldRawSID != "" {
		m.store.Delete(m.key(oldRawSID))
	}
	return m.Issue(w, d)
}

// Update pisa el payload de una sesión existente sin tocar la cookie.
func (m *Manager) Update(rawSID string, d *Data) error {
	return m.save(rawSID, d)
}

// Clear borra la sesión del store y manda la cookie de borrado.
func (m *Manager) Clear(w http.ResponseWriter, rawSID string) {
	if rawSID != "" {
		m.store.Delete(m.key(rawSID))
	}
	http.SetCookie(w, buildDeletionCookie(
		m.cookie.Name, m.cookie.Domain, m.cookie.SameSite, m.cookie.Secure,
	))
}

// Close libera el backing store si tiene recursos propios (redis).
func (m *Manager) Close() error {
	if c, ok := m.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (m *Manager) save(rawSID string, d *Data) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	m.store.Set(m.key(rawSID), b, m.cookie.TTL)
	return nil
}
