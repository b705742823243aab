package stepauth

import (
	"context"
	"errors"
	"io"

	"github.com/stepauth/stepauth/internal/audit"
)

// AuditEvent is the structured record emitted for every security-relevant
// engine operation.
type AuditEvent = audit.Event

// AuditSink receives emitted audit events. Sinks run on the dispatcher
// goroutine and should return quickly.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NewChannelAuditSink returns a sink backed by a buffered channel.
func NewChannelAuditSink(buffer int) *audit.ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONAuditSink returns a sink writing one JSON event per line.
func NewJSONAuditSink(w io.Writer) *audit.JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// Audit event types emitted by the engine.
const (
	auditAuthSuccess       = "auth.success"
	auditAuthFailure       = "auth.failure"
	auditAuthMFARequired   = "auth.mfa_required"
	auditMFASuccess        = "mfa.success"
	auditMFAFailure        = "mfa.failure"
	auditRefreshSuccess    = "refresh.success"
	auditRefreshFailure    = "refresh.failure"
	auditRefreshReplay     = "refresh.replay_detected"
	auditDeviceMismatch    = "refresh.device_mismatch"
	auditLogout            = "logout"
	auditLogoutAll         = "logout.all"
	auditOTPDeliveryFailed = "otp.delivery_failed"
)

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, event)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	// keep backend details out of audit records
	for _, sentinel := range []error{
		ErrPrincipalNotFound, ErrPrincipalInactive, ErrInvalidCredentials,
		ErrTokenExpired, ErrInvalidToken, ErrTokenSignatureInvalid,
		ErrRefreshTokenNotFound, ErrAccessDenied, ErrMFASessionExpired,
		ErrInvalidMFACode, ErrMFAAttemptsExceeded, ErrSocialAuthFailed,
		ErrChallengeStoreUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}
