package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/stepauth/stepauth"
)

type staticPrincipals struct{ p stepauth.Principal }

func (s staticPrincipals) FindByIdentifier(_ context.Context, identifier string) (*stepauth.Principal, error) {
	if identifier != s.p.Identifier {
		return nil, stepauth.ErrPrincipalNotFound
	}
	cp := s.p
	return &cp, nil
}

type staticCredentials struct{ c stepauth.Credential }

func (s staticCredentials) FindByPrincipal(_ context.Context, _ string, kind stepauth.CredentialKind) (stepauth.Credential, error) {
	if s.c == nil || s.c.Kind() != kind {
		return nil, stepauth.ErrInvalidCredentials
	}
	return s.c, nil
}

func (staticCredentials) Save(context.Context, string, stepauth.Credential) error { return nil }
func (staticCredentials) Delete(context.Context, string, stepauth.CredentialKind) error {
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "plain:" + plain, nil }
func (plainHasher) Verify(plain, encoded string) (bool, error) {
	return "plain:"+plain == encoded, nil
}

func newGuardEngine(t *testing.T, suspicious bool) (*stepauth.Engine, *stepauth.Token) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	engine, err := stepauth.New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithPrincipalStore(staticPrincipals{p: stepauth.Principal{
			ID: "p1", Identifier: "alice", Type: stepauth.PrincipalUser, Active: true,
		}}).
		WithCredentialStore(staticCredentials{c: stepauth.PasswordCredential{Hash: "plain:secret-password"}}).
		WithPasswordHasher(plainHasher{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	actx := stepauth.NewAuthContext("203.0.113.1", "test-agent", stepauth.ChannelWeb)
	actx.SuspiciousActivity = suspicious
	res, err := engine.Authenticate(context.Background(), "alice",
		stepauth.PasswordCredential{Plain: "secret-password"}, actx)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	return engine, res.Tokens
}

func testConfig() stepauth.Config {
	return stepauth.Config{
		JWT: stepauth.JWTConfig{
			SigningMethod: "hs256",
			KeyID:         "primary",
			Secret:        []byte("0123456789abcdef0123456789abcdef"),
		},
		Token: stepauth.TokenConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			MFAPendingTTL: 5 * time.Minute,
			LevelMultipliers: map[stepauth.TrustLevel]int{
				stepauth.TrustLow: 1, stepauth.TrustMedium: 2, stepauth.TrustHigh: 4,
			},
		},
		MFA:     stepauth.MFAConfig{OTPDigits: 6, MaxAttempts: 3},
		Metrics: stepauth.MetricsConfig{Enabled: true},
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access, ok := AccessFromContext(r.Context())
		if !ok || access == nil {
			http.Error(w, "missing access", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAccessAdmitsFullToken(t *testing.T) {
	engine, tokens := newGuardEngine(t, false)
	srv := RequireAccess(engine, stepauth.TrustLow)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAccessRejectsMissingAndGarbageTokens(t *testing.T) {
	engine, _ := newGuardEngine(t, false)
	srv := RequireAccess(engine, stepauth.TrustLow)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d", rec.Code)
	}
}

func TestRequireAccessEnforcesMinimumLevel(t *testing.T) {
	engine, tokens := newGuardEngine(t, false)
	// tokens were issued at LOW; HIGH routes must reject them
	srv := RequireAccess(engine, stepauth.TrustHigh)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAccessRejectsPendingToken(t *testing.T) {
	engine, tokens := newGuardEngine(t, true)
	srv := RequireAccess(engine, stepauth.TrustLow)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pending token: status = %d, want 403", rec.Code)
	}

	// the MFA endpoint's guard admits it
	pendingSrv := AllowPending(engine)(okHandler())
	rec = httptest.NewRecorder()
	pendingSrv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("AllowPending: status = %d, want 200", rec.Code)
	}
}
