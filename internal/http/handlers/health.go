package handlers

import (
	"context"
	"net/http"
	"time"

	httpx "github.com/dropDatabas3/entrada/internal/http"
	"github.com/dropDatabas3/entrada/internal/store/core"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Healthz: liveness, siempre 200 si el proceso atiende.
func Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz valida que el store responda antes de declararse listo. Para
// stores en memoria no hay nada que chequear.
func Readyz(repo core.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := repo.(pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				httpx.WriteError(w, http.StatusServiceUnavailable, "not_ready", "store no disponible")
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
