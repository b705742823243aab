package stepauth

import (
	"context"
	"errors"
	"time"
)

// Refresh rotates a refresh token: the presented value is consumed and a new
// access/refresh pair is issued at the trust level recorded when the value
// was issued. A value can be rotated exactly once; replaying a consumed
// value yields [ErrRefreshTokenNotFound]. Presenting from a different device
// yields [ErrAccessDenied] and leaves the token usable by its real device.
func (e *Engine) Refresh(ctx context.Context, refreshValue string, actx AuthContext) (*AuthResult, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	tokens, err := e.tokens.rotate(ctx, refreshValue, actx)
	if err != nil {
		e.refreshFailed(ctx, actx, err)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   auditRefreshSuccess,
		PrincipalID: tokens.PrincipalID,
		Level:       tokens.Level.String(),
		Device:      actx.Device(),
		IP:          actx.IPAddress,
		Success:     true,
	})

	return &AuthResult{
		Outcome: Authenticated(tokens.Level),
		Tokens:  tokens,
	}, nil
}

// Logout revokes the record behind a refresh value. Unknown, expired or
// already-consumed values are a silent no-op, so logout is idempotent.
func (e *Engine) Logout(ctx context.Context, refreshValue string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	if err := e.tokens.revoke(ctx, refreshValue); err != nil {
		return err
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: auditLogout,
		Success:   true,
	})
	return nil
}

// LogoutAll revokes every refresh record for a principal, for compromise
// response. Returns how many records were revoked.
func (e *Engine) LogoutAll(ctx context.Context, principalID string) (int, error) {
	if e == nil || e.tokens == nil {
		return 0, ErrEngineNotReady
	}
	n, err := e.tokens.refresh.DeleteByPrincipal(ctx, principalID)
	if err != nil {
		return 0, err
	}
	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   auditLogoutAll,
		PrincipalID: principalID,
		Success:     true,
	})
	return n, nil
}

func (e *Engine) refreshFailed(ctx context.Context, actx AuthContext, cause error) {
	eventType := auditRefreshFailure
	switch {
	case errors.Is(cause, ErrRefreshTokenNotFound):
		e.metricInc(MetricRefreshReplayDetected)
		eventType = auditRefreshReplay
	case errors.Is(cause, ErrAccessDenied):
		e.metricInc(MetricRefreshDeviceMismatch)
		eventType = auditDeviceMismatch
	default:
		e.metricInc(MetricRefreshFailure)
	}
	e.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Device:    actx.Device(),
		IP:        actx.IPAddress,
		Error:     errString(cause),
	})
}
