package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	xoauth "github.com/dropDatabas3/entrada/internal/oauth"
)

func testClient(tokenURL, userInfoURL string) *Client {
	return New(Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/google/callback",
		AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:     tokenURL,
		UserInfoURL:  userInfoURL,
		Scopes:       []string{"openid", "profile", "email"},
	})
}

func TestBuildAuthorizationRequest(t *testing.T) {
	t.Parallel()
	c := testClient("https://example.invalid/token", "https://example.invalid/userinfo")

	r1, err := c.BuildAuthorizationRequest()
	if err != nil {
		t.Fatal(err)
	}
	r2, err := c.BuildAuthorizationRequest()
	if err != nil {
		t.Fatal(err)
	}
	if r1.State == r2.State {
		t.Fatalf("dos requests consecutivos con el mismo state: %q", r1.State)
	}

	u, err := url.Parse(r1.URL)
	if err != nil {
		t.Fatalf("auth url inválida: %v", err)
	}
	q := u.Query()
	if got := q.Get("state"); got != r1.State {
		t.Errorf("state en URL = %q, want %q", got, r1.State)
	}
	if got := q.Get("client_id"); got != "cid" {
		t.Errorf("client_id = %q", got)
	}
	if sc := q.Get("scope"); !strings.Contains(sc, "email") {
		t.Errorf("scope sin email: %q", sc)
	}
}

func TestExchangeCode_OK(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.Form.Get("code"); got != "code-1" {
			t.Errorf("code = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "https://example.invalid/userinfo")
	tok, err := c.ExchangeCode(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("ExchangeCode err: %v", err)
	}
	if tok != "tok1" {
		t.Errorf("token = %q", tok)
	}
}

func TestExchangeCode_ProviderRejection(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "https://example.invalid/userinfo")
	_, err := c.ExchangeCode(context.Background(), "expired-code")
	if err == nil {
		t.Fatal("expected error")
	}
	if !xoauth.IsExchangeError(err) {
		t.Errorf("err no es ExchangeError: %v", err)
	}
}

func TestFetchProfile_OK(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok1" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":            "g-1",
			"email":          "a@x.com",
			"email_verified": true,
			"given_name":     "A",
			"family_name":    "X",
			"picture":        "http://img/1.png",
		})
	}))
	defer srv.Close()

	c := testClient("https://example.invalid/token", srv.URL)
	p, err := c.FetchProfile(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("FetchProfile err: %v", err)
	}
	if p.Subject != "g-1" || p.Email != "a@x.com" || !p.EmailVerified {
		t.Errorf("profile inesperado: %+v", p)
	}
}

func TestFetchProfile_RejectedTokenIsMaskedInError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	const tok = "super-secret-access-token"
	c := testClient("https://example.invalid/token", srv.URL)
	_, err := c.FetchProfile(context.Background(), tok)
	if err == nil {
		t.Fatal("expected error")
	}
	if !xoauth.IsProfileError(err) {
		t.Errorf("err no es ProfileError: %v", err)
	}
	// el mensaje sirve para correlacionar pero nunca lleva el token entero
	if strings.Contains(err.Error(), tok) {
		t.Errorf("token completo filtrado en el error: %v", err)
	}
	if !strings.Contains(err.Error(), tok[:4]) {
		t.Errorf("error sin prefijo de correlación: %v", err)
	}
}

func TestFetchProfile_IncompletePayload(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"email": "a@x.com"}) // sin sub
	}))
	defer srv.Close()

	c := testClient("https://example.invalid/token", srv.URL)
	_, err := c.FetchProfile(context.Background(), "tok1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !xoauth.IsProfileError(err) {
		t.Errorf("err no es ProfileError: %v", err)
	}
}
