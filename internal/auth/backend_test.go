package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/entrada/internal/oauth"
	"github.com/dropDatabas3/entrada/internal/store/core"
	"github.com/dropDatabas3/entrada/internal/store/memory"
)

// fakeProvider simula el IdP: cada code resuelve a un token fijo y el
// perfil es configurable. Cuenta llamadas para los asserts de CSRF.
type fakeProvider struct {
	tokenByCode map[string]string
	profile     core.Profile

	exchangeErr error
	profileErr  error

	exchangeCalls int
	profileCalls  int
}

func (f *fakeProvider) Name() string { return "google" }

func (f *fakeProvider) BuildAuthorizationRequest() (*oauth.AuthorizationRequest, error) {
	return &oauth.AuthorizationRequest{URL: "https://idp.example/auth?state=s", State: "s"}, nil
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code string) (string, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	tok, ok := f.tokenByCode[code]
	if !ok {
		return "", &oauth.ExchangeError{Err: errors.New("unknown code")}
	}
	return tok, nil
}

func (f *fakeProvider) FetchProfile(_ context.Context, _ string) (*core.Profile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	cp := f.profile
	return &cp, nil
}

// countingRepo envuelve al repo real contando escrituras.
type countingRepo struct {
	core.Repository
	userUpserts int
	linkUpserts int
	linkErr     error
}

func (c *countingRepo) UpsertUser(ctx context.Context, p *core.Profile) (*core.User, error) {
	c.userUpserts++
	return c.Repository.UpsertUser(ctx, p)
}

func (c *countingRepo) UpsertProviderLink(ctx context.Context, provider, subjectID, userID, accessToken string) error {
	c.linkUpserts++
	if c.linkErr != nil {
		return c.linkErr
	}
	return c.Repository.UpsertProviderLink(ctx, provider, subjectID, userID, accessToken)
}

func googleProfile() core.Profile {
	return core.Profile{
		Subject:       "g-1",
		Email:         "a@x.com",
		EmailVerified: true,
		GivenName:     "A",
		FamilyName:    "X",
		Picture:       "http://img/1.png",
	}
}

func TestAuthenticate_HappyPath(t *testing.T) {
	t.Parallel()
	fp := &fakeProvider{
		tokenByCode: map[string]string{"code-1": "tok1", "code-2": "tok2"},
		profile:     googleProfile(),
	}
	repo := memory.New()
	b := NewBackend(repo, fp)

	p, err := b.Authenticate(context.Background(), Credentials{Code: "code-1", OldState: "abc", NewState: "abc"})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, "tok1", p.AccessToken)

	// segundo login, mismo perfil, token nuevo: misma identidad,
	// access token last-write-wins
	p2, err := b.Authenticate(context.Background(), Credentials{Code: "code-2", OldState: "xyz", NewState: "xyz"})
	require.NoError(t, err)
	require.NotNil(t, p2)
	assert.Equal(t, p.UserID, p2.UserID)
	assert.Equal(t, "tok2", p2.AccessToken)

	_, link, err := repo.GetUserWithLink(context.Background(), p.UserID)
	require.NoError(t, err)
	assert.Equal(t, "tok2", link.AccessToken)
}

func TestAuthenticate_CSRFMismatch(t *testing.T) {
	t.Parallel()
	fp := &fakeProvider{tokenByCode: map[string]string{"code-1": "tok1"}, profile: googleProfile()}
	repo := &countingRepo{Repository: memory.New()}
	b := NewBackend(repo, fp)

	p, err := b.Authenticate(context.Background(), Credentials{Code: "code-1", OldState: "abc", NewState: "xyz"})
	require.NoError(t, err, "mismatch es rechazo, no falla")
	assert.Nil(t, p)

	// cero llamadas al provider y cero escrituras
	assert.Zero(t, fp.exchangeCalls)
	assert.Zero(t, fp.profileCalls)
	assert.Zero(t, repo.userUpserts)
	assert.Zero(t, repo.linkUpserts)
}

func TestAuthenticate_EmptyStatesRejected(t *testing.T) {
	t.Parallel()
	fp := &fakeProvider{tokenByCode: map[string]string{}, profile: googleProfile()}
	b := NewBackend(memory.New(), fp)

	p, err := b.Authenticate(context.Background(), Credentials{Code: "c", OldState: "", NewState: ""})
	require.NoError(t, err)
	assert.Nil(t, p, "dos states vacíos no son un login válido")
	assert.Zero(t, fp.exchangeCalls)
}

func TestAuthenticate_ProviderOutage(t *testing.T) {
	t.Parallel()
	fp := &fakeProvider{
		exchangeErr: &oauth.ExchangeError{Err: errors.New("connection refused")},
		profile:     googleProfile(),
	}
	b := NewBackend(memory.New(), fp)

	p, err := b.Authenticate(context.Background(), Credentials{Code: "code-1", OldState: "s", NewState: "s"})
	require.Error(t, err, "caída del provider es error duro, no Ok(None)")
	assert.Nil(t, p)
	assert.True(t, oauth.IsExchangeError(err))
}

func TestAuthenticate_LinkUpsertFailureIsHard(t *testing.T) {
	t.Parallel()
	fp := &fakeProvider{tokenByCode: map[string]string{"code-1": "tok1"}, profile: googleProfile()}
	repo := &countingRepo{Repository: memory.New(), linkErr: errors.New("constraint violation")}
	b := NewBackend(repo, fp)

	p, err := b.Authenticate(context.Background(), Credentials{Code: "code-1", OldState: "s", NewState: "s"})
	require.Error(t, err, "user sin link no se puede rehidratar: el login debe fallar")
	assert.Nil(t, p)
	assert.Equal(t, 1, repo.userUpserts)
	assert.Equal(t, 1, repo.linkUpserts)
}

func TestReloadPrincipal_Consistency(t *testing.T) {
	t.Parallel()
	fp := &fakeProvider{tokenByCode: map[string]string{"code-1": "tok1"}, profile: googleProfile()}
	b := NewBackend(memory.New(), fp)

	p, err := b.Authenticate(context.Background(), Credentials{Code: "code-1", OldState: "s", NewState: "s"})
	require.NoError(t, err)
	require.NotNil(t, p)

	got, err := b.ReloadPrincipal(context.Background(), p.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Email, got.Email)
	assert.Equal(t, p.AccessToken, got.AccessToken)
}

func TestReloadPrincipal_UnknownIDIsNone(t *testing.T) {
	t.Parallel()
	b := NewBackend(memory.New(), &fakeProvider{})

	p, err := b.ReloadPrincipal(context.Background(), "no-such-user")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestReloadPrincipal_MissingLinkIsHardError(t *testing.T) {
	t.Parallel()
	repo := memory.New()
	u, err := repo.UpsertUser(context.Background(), &core.Profile{Subject: "g-9", Email: "b@x.com"})
	require.NoError(t, err)
	// sin UpsertProviderLink: registro a medio escribir

	b := NewBackend(repo, &fakeProvider{})
	_, err = b.ReloadPrincipal(context.Background(), u.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLinkMissing)
}

func TestSessionAuthHash_InvalidatesOnRotation(t *testing.T) {
	t.Parallel()
	fp := &fakeProvider{tokenByCode: map[string]string{"code-1": "tok1"}, profile: googleProfile()}
	repo := memory.New()
	b := NewBackend(repo, fp)

	p, err := b.Authenticate(context.Background(), Credentials{Code: "code-1", OldState: "s", NewState: "s"})
	require.NoError(t, err)
	storedHash := p.SessionAuthHash()

	// rotación externa del token: todas las sesiones firmadas con el
	// valor viejo tienen que morir
	require.True(t, repo.SetLinkAccessToken("google", "g-1", "rotated"))

	got, err := b.ReloadPrincipal(context.Background(), p.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotEqual(t, storedHash, got.SessionAuthHash())
}

func TestPrincipalString_RedactsToken(t *testing.T) {
	t.Parallel()
	p := Principal{UserID: "u1", Email: "a@x.com", AccessToken: "super-secret-token"}
	s := p.String()
	assert.NotContains(t, s, "super-secret-token")
	assert.Contains(t, s, "[redacted]")
}
