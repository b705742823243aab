package stepauth

import (
	"context"
	"errors"
	"time"
)

// CompleteMFA finishes a pending attempt. The caller presents the pending
// token, the session id it received alongside it, and the delivered code.
// On success the engine escalates trust and issues the full-access pair.
//
// Principal identity comes from the verified pending token only; the stored
// challenge is single-use on every path that inspects the code.
func (e *Engine) CompleteMFA(ctx context.Context, mfaToken, mfaSessionID string, method MFAMethod, code string, actx AuthContext) (*AuthResult, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if method != MethodOTP {
		return nil, ErrInvalidMFACode
	}

	claims, err := e.tokens.verify(mfaToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenKind != string(KindMFAPending) {
		return nil, ErrInvalidToken
	}
	if claims.MFASessionID == "" || claims.MFASessionID != mfaSessionID {
		return nil, ErrMFASessionExpired
	}

	if err := e.challenges.Consume(ctx, mfaSessionID, claims.Subject, code); err != nil {
		e.mfaFailed(ctx, actx, claims.Subject, mfaSessionID, err)
		return nil, err
	}

	current, ok := ParseTrustLevel(claims.AuthLevel)
	if !ok {
		return nil, ErrInvalidToken
	}
	// completing a factor never lowers trust
	level := maxLevel(current, TrustMedium)

	tokens, err := e.tokens.issueFullAccess(ctx, claims.Subject, claims.Identifier, level, actx.Device())
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricMFASuccess)
	e.emitAudit(ctx, AuditEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    auditMFASuccess,
		PrincipalID:  claims.Subject,
		Identifier:   claims.Identifier,
		Level:        level.String(),
		Device:       actx.Device(),
		IP:           actx.IPAddress,
		MFASessionID: mfaSessionID,
		Success:      true,
	})

	return &AuthResult{
		Outcome: Authenticated(level, KindPassword, KindOTP),
		Tokens:  tokens,
	}, nil
}

func (e *Engine) mfaFailed(ctx context.Context, actx AuthContext, principalID, sessionID string, cause error) {
	if errors.Is(cause, ErrMFAAttemptsExceeded) {
		e.metricInc(MetricMFAAttemptsExceeded)
	} else {
		e.metricInc(MetricMFAFailure)
	}
	e.emitAudit(ctx, AuditEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    auditMFAFailure,
		PrincipalID:  principalID,
		Device:       actx.Device(),
		IP:           actx.IPAddress,
		MFASessionID: sessionID,
		Error:        errString(cause),
	})
}
