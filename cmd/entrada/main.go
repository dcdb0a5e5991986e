package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/entrada/internal/app"
	"github.com/dropDatabas3/entrada/internal/config"
	httpx "github.com/dropDatabas3/entrada/internal/http"
	"github.com/dropDatabas3/entrada/internal/observability/logger"
	"github.com/dropDatabas3/entrada/internal/store/pg"
)

func main() {
	// .env es best-effort, en prod las vars vienen del entorno
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:   "entrada",
		Short: "Servicio de login social con sesiones",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path al config YAML (opcional)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfgPath)
		},
	}

	var migrationsDir string
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones de postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cfgPath, migrationsDir, false)
		},
	}
	migrateDown := &cobra.Command{
		Use:   "down",
		Short: "Revierte las migraciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cfgPath, migrationsDir, true)
		},
	}
	migrate.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations/postgres", "directorio de migraciones")
	migrate.AddCommand(migrateDown)

	root.AddCommand(serve, migrate)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "entrada",
	})
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.Flags.Migrate {
		if p, ok := c.Repo.(*pg.Store); ok {
			if err := p.RunMigrations(ctx, "migrations/postgres"); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			log.Info("migraciones aplicadas")
		}
	}

	srv := httpx.NewServer(cfg.Server.Addr, app.NewRouter(c))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("apagando http server")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server terminó con error", logger.Err(err))
		return err
	}
	log.Info("bye")
	return nil
}

func runMigrate(cfgPath, dir string, down bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "entrada"})
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	if down {
		return st.RunMigrationsDown(ctx, dir)
	}
	return st.RunMigrations(ctx, dir)
}
