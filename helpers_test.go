package stepauth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/stepauth/stepauth/internal"
	"github.com/stepauth/stepauth/password"
	"github.com/stepauth/stepauth/social"
)

func digestOf(value string) string { return internal.DigestValue(value) }

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
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
	return mr, rdb
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.JWT.Issuer = "stepauth-test"
	return cfg
}

// testHasher keeps argon2 costs at their floor so tests stay fast.
func testHasher(t *testing.T) *password.Hasher {
	t.Helper()
	h, err := password.NewHasher(password.Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

type memPrincipalStore struct {
	mu      sync.RWMutex
	byIdent map[string]*Principal
}

func newMemPrincipalStore() *memPrincipalStore {
	return &memPrincipalStore{byIdent: make(map[string]*Principal)}
}

func (s *memPrincipalStore) add(p *Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byIdent[p.Identifier] = p
}

func (s *memPrincipalStore) FindByIdentifier(_ context.Context, identifier string) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byIdent[identifier]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	cp := *p
	return &cp, nil
}

type credKey struct {
	principalID string
	kind        CredentialKind
}

type memCredentialStore struct {
	mu    sync.RWMutex
	creds map[credKey]Credential
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{creds: make(map[credKey]Credential)}
}

func (s *memCredentialStore) FindByPrincipal(_ context.Context, principalID string, kind CredentialKind) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creds[credKey{principalID, kind}]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

func (s *memCredentialStore) Save(_ context.Context, principalID string, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[credKey{principalID, cred.Kind()}] = cred
	return nil
}

func (s *memCredentialStore) Delete(_ context.Context, principalID string, kind CredentialKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, credKey{principalID, kind})
	return nil
}

type recordingDeliverer struct {
	mu    sync.Mutex
	codes []string
	fail  bool
}

func (d *recordingDeliverer) Deliver(_ context.Context, _ *Principal, _ string, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("delivery channel down")
	}
	d.codes = append(d.codes, code)
	return nil
}

func (d *recordingDeliverer) lastCode(t *testing.T) string {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.codes) == 0 {
		t.Fatal("no OTP code was delivered")
	}
	return d.codes[len(d.codes)-1]
}

type testEnv struct {
	engine     *Engine
	mr         *miniredis.Miniredis
	rdb        *redis.Client
	principals *memPrincipalStore
	creds      *memCredentialStore
	deliverer  *recordingDeliverer
	resolver   *social.MockResolver
}

func newTestEngine(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	mr, rdb := newTestRedis(t)
	principals := newMemPrincipalStore()
	creds := newMemCredentialStore()
	deliverer := &recordingDeliverer{}
	resolver := social.NewMockResolver()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPrincipalStore(principals).
		WithCredentialStore(creds).
		WithPasswordHasher(testHasher(t)).
		WithSocialResolver(resolver).
		WithOTPDeliverer(deliverer).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEnv{
		engine:     engine,
		mr:         mr,
		rdb:        rdb,
		principals: principals,
		creds:      creds,
		deliverer:  deliverer,
		resolver:   resolver,
	}
}

// seedPasswordUser registers an active principal with a hashed password.
func (env *testEnv) seedPasswordUser(t *testing.T, id, identifier, plain string) {
	t.Helper()
	env.principals.add(&Principal{ID: id, Identifier: identifier, Type: PrincipalUser, Active: true})
	hash, err := testHasher(t).Hash(plain)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if err := env.creds.Save(context.Background(), id, PasswordCredential{Hash: hash, Verified: true}); err != nil {
		t.Fatalf("Save credential failed: %v", err)
	}
}

func webContext() AuthContext {
	return NewAuthContext("203.0.113.10", "Mozilla/5.0 (test)", ChannelWeb)
}

func suspiciousContext() AuthContext {
	actx := webContext()
	actx.SuspiciousActivity = true
	return actx
}
