// Package memory implementa core.Repository en memoria.
// Se usa en tests y en modo dev (storage.driver: memory); replica la
// semántica de upsert del adapter pg para que los tests valgan algo.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/entrada/internal/store/core"
)

type Store struct {
	mu      sync.Mutex
	byEmail map[string]*core.User
	byID    map[string]*core.User
	links   map[string]*core.ProviderLink // key: provider + "|" + subject
	nextID  int64
}

func New() *Store {
	return &Store{
		byEmail: make(map[string]*core.User),
		byID:    make(map[string]*core.User),
		links:   make(map[string]*core.ProviderLink),
	}
}

func (s *Store) UpsertUser(_ context.Context, p *core.Profile) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(p.Email)
	if u, ok := s.byEmail[email]; ok {
		// conflicto por email: solo se pisa image
		u.Image = p.Picture
		cp := *u
		return &cp, nil
	}
	u := &core.User{
		ID:            uuid.NewString(),
		Email:         email,
		FirstName:     p.GivenName,
		LastName:      p.FamilyName,
		EmailVerified: p.EmailVerified,
		Image:         p.Picture,
		CreatedAt:     time.Now().UTC(),
	}
	s.byEmail[email] = u
	s.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *Store) UpsertProviderLink(_ context.Context, provider, subjectID, userID, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := provider + "|" + subjectID
	if l, ok := s.links[key]; ok {
		l.AccessToken = accessToken
		return nil
	}
	s.nextID++
	s.links[key] = &core.ProviderLink{
		ID:                s.nextID,
		Provider:          provider,
		ProviderSubjectID: subjectID,
		UserID:            userID,
		AccessToken:       accessToken,
		CreatedAt:         time.Now().UTC(),
	}
	return nil
}

func (s *Store) GetUserWithLink(_ context.Context, userID string) (*core.User, *core.ProviderLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return nil, nil, core.ErrNotFound
	}
	for _, l := range s.links {
		if l.UserID == userID {
			cu, cl := *u, *l
			return &cu, &cl, nil
		}
	}
	cu := *u
	return &cu, nil, core.ErrLinkMissing
}

func (s *Store) Close() {}

// SetLinkAccessToken pisa el token de un link por fuera del flujo de login.
// Existe para simular rotación de tokens (invalidación de sesiones) en tests.
func (s *Store) SetLinkAccessToken(provider, subjectID, accessToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[provider+"|"+subjectID]
	if !ok {
		return false
	}
	l.AccessToken = accessToken
	return true
}
