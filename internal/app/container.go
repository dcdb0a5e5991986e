// Package app arma el grafo de dependencias del servicio a partir de
// la configuración: store, sesiones, backends por provider y router.
package app

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/entrada/internal/auth"
	"github.com/dropDatabas3/entrada/internal/config"
	"github.com/dropDatabas3/entrada/internal/oauth/google"
	"github.com/dropDatabas3/entrada/internal/session"
	"github.com/dropDatabas3/entrada/internal/store"
	"github.com/dropDatabas3/entrada/internal/store/core"
)

type Container struct {
	Cfg      *config.Config
	Repo     core.Repository
	Sessions *session.Manager
	// Backends por nombre de provider ("google", ...).
	Backends map[string]auth.Backend
}

// New construye el container completo. El caller es dueño del ciclo de
// vida: Close() al apagar.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	repo, err := store.Open(ctx, storeConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("app: abrir store: %w", err)
	}

	sessions, err := buildSessions(cfg)
	if err != nil {
		repo.Close()
		return nil, err
	}

	backends := buildBackends(cfg, repo)
	if len(backends) == 0 {
		repo.Close()
		return nil, fmt.Errorf("app: ningún provider habilitado")
	}

	return &Container{
		Cfg:      cfg,
		Repo:     repo,
		Sessions: sessions,
		Backends: backends,
	}, nil
}

// DefaultBackend devuelve un backend cualquiera para operaciones que no
// dependen del provider (recarga de principal desde el store).
func (c *Container) DefaultBackend() auth.Backend {
	if b, ok := c.Backends["google"]; ok {
		return b
	}
	for _, b := range c.Backends {
		return b
	}
	return nil
}

func (c *Container) Close() {
	if c.Sessions != nil {
		_ = c.Sessions.Close()
	}
	if c.Repo != nil {
		c.Repo.Close()
	}
}

func storeConfig(cfg *config.Config) store.Config {
	sc := store.Config{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.Storage.DSN,
	}
	sc.Postgres.MaxConns = cfg.Storage.Postgres.MaxConns
	sc.Postgres.ConnMaxLifetime = cfg.Storage.Postgres.ConnMaxLifetime
	return sc
}

func buildSessions(cfg *config.Config) (*session.Manager, error) {
	var st session.Store
	switch cfg.Session.Kind {
	case "redis":
		st = session.NewRedisStore(cfg.Session.Redis.Addr, cfg.Session.Redis.DB, cfg.Session.Redis.Prefix)
	case "memory", "":
		st = session.NewMemoryStore(cfg.SessionTTL())
	default:
		return nil, fmt.Errorf("app: session kind desconocido %q", cfg.Session.Kind)
	}
	return session.NewManager(st, session.CookieConfig{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Session.Domain,
		SameSite: cfg.Session.SameSite,
		Secure:   cfg.Session.Secure,
		TTL:      cfg.SessionTTL(),
	}), nil
}

func buildBackends(cfg *config.Config, repo core.Repository) map[string]auth.Backend {
	backends := make(map[string]auth.Backend)
	if g := cfg.Providers.Google; g.Enabled {
		backends["google"] = auth.NewBackend(repo, google.New(google.Config{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURL:  g.RedirectURL,
			AuthURL:      g.AuthURL,
			TokenURL:     g.TokenURL,
			UserInfoURL:  g.UserInfoURL,
			Scopes:       g.Scopes,
		}))
	}
	return backends
}
