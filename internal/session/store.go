// Package session maneja las sesiones server-side: cookie con sid opaco,
// payload JSON en un store con TTL (memory o redis) y el estado
// transitorio del flujo de login (state anti-CSRF + next url).
package session

import "time"

// Store es el backing de sesiones: set/get/remove por key con expiración.
// La durabilidad depende del backend elegido; el contrato no cambia.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, v []byte, ttl time.Duration)
	Delete(key string)
}
