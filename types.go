package stepauth

import (
	"context"
	"time"
)

// PrincipalType distinguishes human users from machine principals.
type PrincipalType string

const (
	PrincipalUser    PrincipalType = "USER"
	PrincipalService PrincipalType = "SERVICE"
)

// Principal is the authenticating subject as loaded from the caller's store.
type Principal struct {
	ID         string
	Identifier string
	Type       PrincipalType
	Active     bool
}

// TokenKind discriminates full-access tokens from MFA-pending ones. The kind
// travels inside the signed claims, so a pending token can never be replayed
// against resources that require full access.
type TokenKind string

const (
	KindFullAccess TokenKind = "FULL_ACCESS"
	KindMFAPending TokenKind = "MFA_PENDING"
)

// Token is issued token material plus its metadata.
type Token struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	PrincipalID      string
	Level            TrustLevel
	Kind             TokenKind
}

// RefreshTokenRecord is the persisted single-use state backing a refresh
// token value. The value itself is never stored; records are keyed by its
// digest.
type RefreshTokenRecord struct {
	ID          string
	PrincipalID string
	Identifier  string
	Device      string
	ValueDigest string
	Level       TrustLevel
	ExpiresAt   time.Time
	CreatedAt   time.Time
	LastUsedAt  time.Time
}

// Expired reports whether the record's lifetime has passed at t.
func (r RefreshTokenRecord) Expired(t time.Time) bool {
	return !t.Before(r.ExpiresAt)
}

// AuthResult is returned by [Engine.Authenticate], [Engine.CompleteMFA] and
// [Engine.Refresh]. Tokens is nil when the outcome is partial and the policy
// suppressed token issuance; for partial outcomes it otherwise carries the
// MFA-pending token.
type AuthResult struct {
	Outcome Outcome
	Tokens  *Token
}

// Access is the verified view of an access token, exposed for handlers and
// middleware. Built only from claims that passed signature and expiry checks.
type Access struct {
	PrincipalID string
	Identifier  string
	Level       TrustLevel
	Kind        TokenKind
	TokenID     string
	ExpiresAt   time.Time
}

// PrincipalStore loads principals by their login identifier. Implementations
// return [ErrPrincipalNotFound] when no principal exists.
type PrincipalStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*Principal, error)
}

// CredentialStore persists stored credentials, keyed by principal and kind.
// Save supersedes any existing credential of the same kind for the principal.
// FindByPrincipal returns [ErrInvalidCredentials] when no credential of the
// requested kind exists.
type CredentialStore interface {
	FindByPrincipal(ctx context.Context, principalID string, kind CredentialKind) (Credential, error)
	Save(ctx context.Context, principalID string, cred Credential) error
	Delete(ctx context.Context, principalID string, kind CredentialKind) error
}

// RefreshTokenStore persists refresh-token records keyed by value digest.
// ConsumeByDigest deletes atomically and reports whether this caller won the
// deletion; under concurrent rotation exactly one caller sees true.
type RefreshTokenStore interface {
	FindByDigest(ctx context.Context, digest string) (*RefreshTokenRecord, error)
	Save(ctx context.Context, rec *RefreshTokenRecord) error
	ConsumeByDigest(ctx context.Context, digest string) (bool, error)
	DeleteByDigest(ctx context.Context, digest string) error
	DeleteByPrincipal(ctx context.Context, principalID string) (int, error)
}

// OTPChallengeStore persists single-use OTP challenges keyed by MFA session
// id. Consume removes the challenge whether or not the supplied code matches,
// and enforces an attempt ceiling for challenges left in place on retryable
// paths.
type OTPChallengeStore interface {
	Save(ctx context.Context, sessionID, principalID, code string, ttl time.Duration) error
	Consume(ctx context.Context, sessionID, principalID, code string) error
}

// PasswordHasher abstracts the password hash scheme.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
}

// PasskeyVerifier checks a passkey assertion signature over a challenge.
type PasskeyVerifier interface {
	VerifyAssertion(publicKey, challenge, signature []byte) (bool, error)
}

// OTPDeliverer hands a generated code to a delivery channel. Delivery is
// best effort; a returned error is recorded but never fails issuance.
type OTPDeliverer interface {
	Deliver(ctx context.Context, principal *Principal, channel, code string) error
}
