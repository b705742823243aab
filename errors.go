package stepauth

import "errors"

var (
	// ErrPrincipalNotFound is returned when no principal matches the login identifier.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrPrincipalInactive is returned when the matched principal is deactivated.
	ErrPrincipalInactive = errors.New("principal inactive")
	// ErrInvalidCredentials is returned for a wrong secret or a missing stored
	// credential. The two cases are deliberately undifferentiated so callers
	// cannot enumerate identifiers.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken is returned for structurally invalid tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenSignatureInvalid is returned when a token signature does not verify.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	// ErrRefreshTokenNotFound is returned when no stored refresh-token record
	// matches the presented value. Replay of an already-rotated value surfaces
	// here, since rotation consumed the record.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrAccessDenied is returned when the presented device fingerprint does
	// not match the one bound at refresh-token issuance.
	ErrAccessDenied = errors.New("access denied")
	// ErrMFASessionExpired is returned when the caller-supplied MFA session id
	// does not match the one embedded in the pending token.
	ErrMFASessionExpired = errors.New("mfa session expired")
	// ErrInvalidMFACode is returned when the second-factor code does not match.
	ErrInvalidMFACode = errors.New("invalid mfa code")
	// ErrMFAAttemptsExceeded is returned when a pending challenge ran out of
	// verification attempts and was invalidated.
	ErrMFAAttemptsExceeded = errors.New("mfa attempts exceeded")
	// ErrSocialAuthFailed is returned when a social-provider lookup fails.
	// Provider detail is preserved for logging, never surfaced raw.
	ErrSocialAuthFailed = errors.New("social auth failed")
	// ErrChallengeStoreUnavailable is returned when the challenge backend
	// cannot be reached.
	ErrChallengeStoreUnavailable = errors.New("challenge backend unavailable")
	// ErrEngineNotReady is returned when the engine was not fully initialized.
	ErrEngineNotReady = errors.New("engine not initialized")
)
