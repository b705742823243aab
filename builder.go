package stepauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/stepauth/stepauth/internal/audit"
	"github.com/stepauth/stepauth/jwt"
	"github.com/stepauth/stepauth/password"
	"github.com/stepauth/stepauth/social"
)

// Builder assembles an Engine. Collaborators with provided defaults (hasher,
// passkey verifier, step-up policy, Redis stores) may be omitted; principal
// and credential stores must come from the caller.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	principals  PrincipalStore
	credentials CredentialStore
	refresh     RefreshTokenStore
	challenges  OTPChallengeStore

	hasher    PasswordHasher
	passkeys  PasskeyVerifier
	resolver  social.Resolver
	policy    StepUpPolicy
	deliverer OTPDeliverer
	auditSink AuditSink

	built bool
}

// New returns a Builder loaded with defaults.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client backing the provided refresh and challenge
// stores. Not needed when both stores are supplied directly.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPrincipalStore supplies principal lookup. Required.
func (b *Builder) WithPrincipalStore(s PrincipalStore) *Builder {
	b.principals = s
	return b
}

// WithCredentialStore supplies stored-credential lookup. Required.
func (b *Builder) WithCredentialStore(s CredentialStore) *Builder {
	b.credentials = s
	return b
}

// WithRefreshTokenStore overrides the Redis-backed refresh store.
func (b *Builder) WithRefreshTokenStore(s RefreshTokenStore) *Builder {
	b.refresh = s
	return b
}

// WithOTPChallengeStore overrides the Redis-backed challenge store.
func (b *Builder) WithOTPChallengeStore(s OTPChallengeStore) *Builder {
	b.challenges = s
	return b
}

// WithPasswordHasher overrides the argon2id default.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

// WithPasskeyVerifier overrides the ed25519 default.
func (b *Builder) WithPasskeyVerifier(v PasskeyVerifier) *Builder {
	b.passkeys = v
	return b
}

// WithSocialResolver enables social credential verification.
func (b *Builder) WithSocialResolver(r social.Resolver) *Builder {
	b.resolver = r
	return b
}

// WithStepUpPolicy overrides the suspicious-activity default.
func (b *Builder) WithStepUpPolicy(p StepUpPolicy) *Builder {
	b.policy = p
	return b
}

// WithOTPDeliverer supplies the best-effort code delivery hook.
func (b *Builder) WithOTPDeliverer(d OTPDeliverer) *Builder {
	b.deliverer = d
	return b
}

// WithAuditSink supplies the audit event consumer.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires defaults for anything omitted and
// returns a ready Engine. A Builder builds at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("stepauth: builder already used")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.principals == nil {
		return nil, errors.New("stepauth: principal store is required")
	}
	if b.credentials == nil {
		return nil, errors.New("stepauth: credential store is required")
	}
	if b.refresh == nil {
		if b.redis == nil {
			return nil, errors.New("stepauth: refresh token store or redis client is required")
		}
		b.refresh = newRedisRefreshStore(b.redis, b.config.Redis.RefreshPrefix)
	}
	if b.challenges == nil {
		if b.redis == nil {
			return nil, errors.New("stepauth: otp challenge store or redis client is required")
		}
		b.challenges = newRedisOTPStore(b.redis, b.config.Redis.ChallengePrefix, b.config.MFA.MaxAttempts)
	}

	if b.hasher == nil {
		h, err := password.NewHasher(password.DefaultParams())
		if err != nil {
			return nil, err
		}
		b.hasher = h
	}
	if b.passkeys == nil {
		b.passkeys = Ed25519PasskeyVerifier{}
	}
	if b.policy == nil {
		b.policy = DefaultStepUpPolicy()
	}

	manager, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.SigningMethod(b.config.JWT.SigningMethod),
		PrivateKey:    signKeyFor(b.config.JWT),
		PublicKey:     b.config.JWT.PublicKey,
		Issuer:        b.config.JWT.Issuer,
		KeyID:         b.config.JWT.KeyID,
	})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:      b.config,
		principals:  b.principals,
		credentials: b.credentials,
		challenges:  b.challenges,
		verifier: &credentialVerifier{
			hasher:   b.hasher,
			passkeys: b.passkeys,
			resolver: b.resolver,
		},
		policy:    b.policy,
		deliverer: b.deliverer,
		tokens:    newTokenService(manager, b.refresh, b.config.Token),
		metrics:   NewMetrics(b.config.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    b.config.Audit.Enabled,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: true,
		}, asInternalSink(b.auditSink)),
	}

	b.built = true
	return e, nil
}

func signKeyFor(cfg JWTConfig) []byte {
	if cfg.SigningMethod == "hs256" {
		return cfg.Secret
	}
	return cfg.PrivateKey
}

// AuditEvent aliases audit.Event, so any AuditSink already satisfies the
// internal sink contract.
func asInternalSink(s AuditSink) audit.Sink {
	if s == nil {
		return nil
	}
	return s
}
