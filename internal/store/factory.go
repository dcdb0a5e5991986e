// Package store abre el repositorio concreto según configuración.
package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/entrada/internal/store/core"
	"github.com/dropDatabas3/entrada/internal/store/memory"
	"github.com/dropDatabas3/entrada/internal/store/pg"
)

type Config struct {
	Driver   string // "postgres" | "memory"
	DSN      string
	Postgres pg.Config
}

func Open(ctx context.Context, cfg Config) (core.Repository, error) {
	switch cfg.Driver {
	case "postgres", "pg", "":
		return pg.New(ctx, cfg.DSN, cfg.Postgres)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("store: driver desconocido %q", cfg.Driver)
	}
}
