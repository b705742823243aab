package stepauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stepauth/stepauth/internal"
	"github.com/stepauth/stepauth/jwt"
)

// kindRefresh is the token_kind claim of refresh tokens. Refresh tokens are
// never accepted where an access token is expected and vice versa.
const kindRefresh = "REFRESH"

// tokenService owns issuance, verification and rotation. All trust-level TTL
// scaling happens here.
type tokenService struct {
	manager *jwt.Manager
	refresh RefreshTokenStore
	cfg     TokenConfig
	now     func() time.Time
}

func newTokenService(manager *jwt.Manager, refresh RefreshTokenStore, cfg TokenConfig) *tokenService {
	return &tokenService{
		manager: manager,
		refresh: refresh,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (t *tokenService) multiplier(level TrustLevel) int {
	if m, ok := t.cfg.LevelMultipliers[level]; ok && m > 0 {
		return m
	}
	return 1
}

// issueFullAccess signs an access/refresh pair for the principal at the given
// trust level and persists the refresh record bound to the device.
func (t *tokenService) issueFullAccess(ctx context.Context, principalID, identifier string, level TrustLevel, device string) (*Token, error) {
	mult := time.Duration(t.multiplier(level))
	accessTTL := t.cfg.AccessTTL * mult
	refreshTTL := t.cfg.RefreshTTL * mult

	base := jwt.Claims{
		Identifier:     identifier,
		AuthLevel:      level.String(),
		AuthLevelValue: level.Value(),
	}
	base.Subject = principalID

	access := base
	access.TokenKind = string(KindFullAccess)
	accessStr, accessExp, err := t.manager.Sign(access, uuid.NewString(), accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshClaims := base
	refreshClaims.TokenKind = kindRefresh
	refreshID := uuid.NewString()
	refreshStr, refreshExp, err := t.manager.Sign(refreshClaims, refreshID, refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	now := t.now().UTC()
	rec := &RefreshTokenRecord{
		ID:          refreshID,
		PrincipalID: principalID,
		Identifier:  identifier,
		Device:      device,
		ValueDigest: internal.DigestValue(refreshStr),
		Level:       level,
		ExpiresAt:   refreshExp,
		CreatedAt:   now,
		LastUsedAt:  now,
	}
	if err := t.refresh.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist refresh record: %w", err)
	}

	return &Token{
		AccessToken:      accessStr,
		RefreshToken:     refreshStr,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
		PrincipalID:      principalID,
		Level:            level,
		Kind:             KindFullAccess,
	}, nil
}

// issueMFAPending signs a short-lived stateless token carrying the MFA
// session id. No refresh material is issued for pending tokens.
func (t *tokenService) issueMFAPending(principalID, identifier string, level TrustLevel, sessionID string) (*Token, error) {
	claims := jwt.Claims{
		Identifier:     identifier,
		AuthLevel:      level.String(),
		AuthLevelValue: level.Value(),
		TokenKind:      string(KindMFAPending),
		MFASessionID:   sessionID,
	}
	claims.Subject = principalID

	signed, exp, err := t.manager.Sign(claims, uuid.NewString(), t.cfg.MFAPendingTTL)
	if err != nil {
		return nil, fmt.Errorf("sign mfa-pending token: %w", err)
	}

	return &Token{
		AccessToken:     signed,
		AccessExpiresAt: exp,
		PrincipalID:     principalID,
		Level:           level,
		Kind:            KindMFAPending,
	}, nil
}

// verify parses the token and maps library failures onto the engine's error
// taxonomy. Claims are only trusted after this returns nil error.
func (t *tokenService) verify(tokenStr string) (*jwt.Claims, error) {
	claims, err := t.manager.Parse(tokenStr)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return claims, nil
}

// rotate consumes a refresh token and issues a fresh pair at the level
// recorded when the token was issued.
//
// Order matters: the device check runs before consumption so a stolen token
// presented from the wrong device does not destroy the legitimate session,
// while consumption runs before reissue so a value can never yield two pairs.
func (t *tokenService) rotate(ctx context.Context, refreshValue string, actx AuthContext) (*Token, error) {
	claims, err := t.verify(refreshValue)
	if err != nil {
		return nil, err
	}
	if claims.TokenKind != kindRefresh {
		return nil, ErrInvalidToken
	}

	digest := internal.DigestValue(refreshValue)
	rec, err := t.refresh.FindByDigest(ctx, digest)
	if err != nil {
		return nil, err
	}
	if rec.Expired(t.now()) {
		_ = t.refresh.DeleteByDigest(ctx, digest)
		return nil, ErrTokenExpired
	}
	if rec.Device != actx.Device() {
		// leave the record intact; the real device can still rotate
		return nil, ErrAccessDenied
	}

	won, err := t.refresh.ConsumeByDigest(ctx, digest)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrRefreshTokenNotFound
	}

	return t.issueFullAccess(ctx, rec.PrincipalID, rec.Identifier, rec.Level, rec.Device)
}

// revoke deletes the record behind a refresh value. Unknown or malformed
// values are a no-op.
func (t *tokenService) revoke(ctx context.Context, refreshValue string) error {
	if refreshValue == "" {
		return nil
	}
	return t.refresh.DeleteByDigest(ctx, internal.DigestValue(refreshValue))
}

func mapTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gojwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid), errors.Is(err, gojwt.ErrSignatureInvalid):
		return ErrTokenSignatureInvalid
	default:
		return ErrInvalidToken
	}
}
