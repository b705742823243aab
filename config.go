package stepauth

import (
	"errors"
	"time"
)

// Config holds the engine's tunable parameters. Build a Config once, hand it
// to the Builder, and treat it as immutable afterwards.
type Config struct {
	JWT     JWTConfig
	Token   TokenConfig
	MFA     MFAConfig
	Redis   RedisConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// JWTConfig controls signing.
type JWTConfig struct {
	SigningMethod string // "hs256" (default) or "ed25519"
	KeyID         string
	Secret        []byte // hs256
	PrivateKey    []byte // ed25519
	PublicKey     []byte // ed25519
	Issuer        string
}

// TokenConfig controls lifetimes. Access and refresh TTLs are base values
// scaled by the trust-level multiplier at issuance; the MFA-pending TTL is
// fixed.
type TokenConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	MFAPendingTTL time.Duration

	// LevelMultipliers maps each trust level to its TTL multiplier. Must be
	// monotonically non-decreasing in level.
	LevelMultipliers map[TrustLevel]int
}

// MFAConfig controls OTP challenges.
type MFAConfig struct {
	OTPDigits   int
	MaxAttempts int
}

// RedisConfig controls key layout for the provided Redis stores.
type RedisConfig struct {
	RefreshPrefix   string
	ChallengePrefix string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
}

// MetricsConfig controls counter collection.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SigningMethod: "hs256",
			KeyID:         "primary",
		},
		Token: TokenConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			MFAPendingTTL: 5 * time.Minute,
			LevelMultipliers: map[TrustLevel]int{
				TrustLow:    1,
				TrustMedium: 2,
				TrustHigh:   4,
			},
		},
		MFA: MFAConfig{
			OTPDigits:   6,
			MaxAttempts: 3,
		},
		Redis: RedisConfig{
			RefreshPrefix:   "stepauth:refresh",
			ChallengePrefix: "stepauth:otp",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Token.LevelMultipliers != nil {
		out.Token.LevelMultipliers = make(map[TrustLevel]int, len(cfg.Token.LevelMultipliers))
		for k, v := range cfg.Token.LevelMultipliers {
			out.Token.LevelMultipliers[k] = v
		}
	}
	out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	out.JWT.PrivateKey = append([]byte(nil), cfg.JWT.PrivateKey...)
	out.JWT.PublicKey = append([]byte(nil), cfg.JWT.PublicKey...)
	return out
}

func validateConfig(cfg Config) error {
	switch cfg.JWT.SigningMethod {
	case "hs256":
		if len(cfg.JWT.Secret) < 32 {
			return errors.New("stepauth: hs256 secret must be at least 32 bytes")
		}
	case "ed25519":
		if len(cfg.JWT.PrivateKey) == 0 || len(cfg.JWT.PublicKey) == 0 {
			return errors.New("stepauth: ed25519 requires both private and public key")
		}
	default:
		return errors.New("stepauth: unknown signing method " + cfg.JWT.SigningMethod)
	}
	if cfg.JWT.KeyID == "" {
		return errors.New("stepauth: key id is required")
	}
	if cfg.Token.AccessTTL <= 0 || cfg.Token.RefreshTTL <= 0 || cfg.Token.MFAPendingTTL <= 0 {
		return errors.New("stepauth: token TTLs must be positive")
	}
	prev := 0
	for _, lvl := range []TrustLevel{TrustLow, TrustMedium, TrustHigh} {
		m, ok := cfg.Token.LevelMultipliers[lvl]
		if !ok || m <= 0 {
			return errors.New("stepauth: level multiplier missing or non-positive for " + lvl.String())
		}
		if m < prev {
			return errors.New("stepauth: level multipliers must not decrease with level")
		}
		prev = m
	}
	if cfg.MFA.OTPDigits < 4 || cfg.MFA.OTPDigits > 10 {
		return errors.New("stepauth: otp digits must be between 4 and 10")
	}
	if cfg.MFA.MaxAttempts <= 0 {
		return errors.New("stepauth: mfa max attempts must be positive")
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize <= 0 {
		return errors.New("stepauth: audit buffer size must be positive")
	}
	return nil
}
