// Package core define los tipos de dominio y el contrato del repositorio
// de identidades. Los adapters (pg, memory) implementan Repository.
package core

import (
	"context"
	"errors"
	"time"
)

// User es la identidad local. Se crea en el primer login exitoso para un
// email dado; en logins posteriores solo se actualiza la foto.
type User struct {
	ID            string
	Email         string
	FirstName     string
	LastName      string
	EmailVerified bool
	Image         string
	CreatedAt     time.Time
}

// ProviderLink vincula un User con una identidad del IdP.
// Clave de conflicto: (provider, provider_subject_id).
type ProviderLink struct {
	ID                int64
	Provider          string
	ProviderSubjectID string
	UserID            string
	AccessToken       string
	CreatedAt         time.Time
}

// Profile es lo que devuelve el userinfo endpoint del IdP, ya validado.
type Profile struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Picture       string
}

var (
	// ErrNotFound: el user id no existe.
	ErrNotFound = errors.New("store: not found")

	// ErrLinkMissing: el user existe pero no tiene provider link.
	// Es un registro corrupto o a medio escribir, no un "no logueado".
	ErrLinkMissing = errors.New("store: user has no provider link")
)

// Repository es el contrato de persistencia de identidades.
type Repository interface {
	// UpsertUser inserta el user; si el email ya existe actualiza solo
	// la imagen y devuelve la fila canónica (los demás campos quedan).
	UpsertUser(ctx context.Context, p *Profile) (*User, error)

	// UpsertProviderLink inserta el link; en conflicto sobre
	// (provider, subject) pisa el access token (last-write-wins).
	UpsertProviderLink(ctx context.Context, provider, subjectID, userID, accessToken string) error

	// GetUserWithLink rehidrata user + link por id.
	// (nil, nil, ErrNotFound) si el id no existe;
	// (user, nil, ErrLinkMissing) si existe sin link.
	GetUserWithLink(ctx context.Context, userID string) (*User, *ProviderLink, error)

	// Close libera recursos del adapter (idempotente).
	Close()
}
