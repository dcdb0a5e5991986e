package pg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/entrada/internal/store/core"
)

type Store struct{ pool *pgxpool.Pool }

type Config struct {
	MaxConns        int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil && d > 0 {
			pcfg.MaxConnLifetime = d
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (readyz/metrics).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Ping verifica la conexión con la base.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) UpsertUser(ctx context.Context, p *core.Profile) (*core.User, error) {
	// En conflicto por email solo pisamos image; el resto de la fila
	// existente queda como estaba (mismo contrato que el adapter memory).
	const q = `
INSERT INTO users (email, first_name, last_name, email_verified, image)
VALUES (LOWER($1), $2, $3, $4, $5)
ON CONFLICT (email) DO UPDATE SET image = EXCLUDED.image
RETURNING id, email, first_name, last_name, email_verified, image, created_at`

	var u core.User
	err := s.pool.QueryRow(ctx, q, p.Email, p.GivenName, p.FamilyName, p.EmailVerified, p.Picture).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.EmailVerified, &u.Image, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("pg upsert user: %w", err)
	}
	return &u, nil
}

func (s *Store) UpsertProviderLink(ctx context.Context, provider, subjectID, userID, accessToken string) error {
	const q = `
INSERT INTO provider_links (provider, provider_subject_id, user_id, access_token)
VALUES ($1, $2, $3, $4)
ON CONFLICT (provider, provider_subject_id) DO UPDATE SET access_token = EXCLUDED.access_token`

	if _, err := s.pool.Exec(ctx, q, provider, subjectID, userID, accessToken); err != nil {
		return fmt.Errorf("pg upsert provider link: %w", err)
	}
	return nil
}

func (s *Store) GetUserWithLink(ctx context.Context, userID string) (*core.User, *core.ProviderLink, error) {
	// un id que no es UUID (payload de sesión corrupto) no es una falla
	// de infraestructura; postgres lo rechazaría como error de parámetro
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil, core.ErrNotFound
	}
	const q = `
SELECT u.id, u.email, u.first_name, u.last_name, u.email_verified, u.image, u.created_at,
       l.id, l.provider, l.provider_subject_id, l.user_id, l.access_token, l.created_at
FROM users u
LEFT JOIN provider_links l ON l.user_id = u.id
WHERE u.id = $1
ORDER BY l.created_at DESC
LIMIT 1`

	var u core.User
	var l core.ProviderLink
	var lID *int64
	var lProvider, lSubject, lUserID, lToken *string
	var lCreated *time.Time

	err := s.pool.QueryRow(ctx, q, userID).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.EmailVerified, &u.Image, &u.CreatedAt,
		&lID, &lProvider, &lSubject, &lUserID, &lToken, &lCreated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, core.ErrNotFound
		}
		return nil, nil, fmt.Errorf("pg get user with link: %w", err)
	}
	if lID == nil {
		return &u, nil, core.ErrLinkMissing
	}
	l.ID = *lID
	l.Provider = *lProvider
	l.ProviderSubjectID = *lSubject
	l.UserID = *lUserID
	l.AccessToken = *lToken
	l.CreatedAt = *lCreated
	return &u, &l, nil
}

// ====================== MIGRACIONES ======================

// RunMigrations ejecuta todos los *_up.sql del dir (ordenados lexicográficamente).
func (s *Store) RunMigrations(ctx context.Context, dir string) error {
	return s.runMigrationFiles(ctx, dir, "_up.sql", false)
}

// RunMigrationsDown ejecuta los *_down.sql en orden inverso.
func (s *Store) RunMigrationsDown(ctx context.Context, dir string) error {
	return s.runMigrationFiles(ctx, dir, "_down.sql", true)
}

func (s *Store) runMigrationFiles(ctx context.Context, dir, suffix string, reverse bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			files = append(files, dir+"/"+e.Name())
		}
	}
	sort.Strings(files)
	if reverse {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
	}
	return nil
}
