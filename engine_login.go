package stepauth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/stepauth/stepauth/internal"
)

// Authenticate runs one authentication attempt: load the principal, verify
// the provided credential against the stored one of the same kind, consult
// the step-up policy, then either issue the full-access pair or open an MFA
// session and issue a pending token.
//
// Verification failures surface as [ErrInvalidCredentials] regardless of
// whether the principal, the credential or the secret was wrong. Failure
// paths also return a result carrying the failed [Outcome], so callers that
// render outcomes never see a nil result for a completed attempt.
func (e *Engine) Authenticate(ctx context.Context, identifier string, provided Credential, actx AuthContext) (*AuthResult, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if identifier == "" || provided == nil {
		return nil, ErrInvalidCredentials
	}

	principal, err := e.principals.FindByIdentifier(ctx, identifier)
	if err != nil {
		e.authFailed(ctx, actx, "", identifier, err)
		return failedResult(err), err
	}
	if !principal.Active {
		e.authFailed(ctx, actx, principal.ID, identifier, ErrPrincipalInactive)
		return failedResult(ErrPrincipalInactive), ErrPrincipalInactive
	}

	stored, err := e.credentials.FindByPrincipal(ctx, principal.ID, provided.Kind())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			e.authFailed(ctx, actx, principal.ID, identifier, ErrInvalidCredentials)
			return failedResult(ErrInvalidCredentials), ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := e.verifier.verify(ctx, provided, stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.authFailed(ctx, actx, principal.ID, identifier, ErrInvalidCredentials)
		return failedResult(ErrInvalidCredentials), ErrInvalidCredentials
	}

	level := provided.MinLevel()
	sessionID := uuid.NewString()
	requirement := e.policy.CheckMFARequirement(actx, sessionID)

	if requirement.Required {
		return e.openMFASession(ctx, principal, level, provided.Kind(), requirement, actx)
	}

	tokens, err := e.tokens.issueFullAccess(ctx, principal.ID, principal.Identifier, level, actx.Device())
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricAuthSuccess)
	e.emitAudit(ctx, AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   auditAuthSuccess,
		PrincipalID: principal.ID,
		Identifier:  identifier,
		Level:       level.String(),
		Device:      actx.Device(),
		IP:          actx.IPAddress,
		Success:     true,
	})

	return &AuthResult{
		Outcome: Authenticated(level, provided.Kind()),
		Tokens:  tokens,
	}, nil
}

func (e *Engine) openMFASession(ctx context.Context, principal *Principal, level TrustLevel, verified CredentialKind, requirement MFARequirement, actx AuthContext) (*AuthResult, error) {
	code, err := internal.NewOTP(e.config.MFA.OTPDigits)
	if err != nil {
		return nil, err
	}
	if err := e.challenges.Save(ctx, requirement.SessionID, principal.ID, code, e.config.Token.MFAPendingTTL); err != nil {
		return nil, err
	}

	if e.deliverer != nil {
		if err := e.deliverer.Deliver(ctx, principal, string(actx.Channel), code); err != nil {
			// delivery is best effort; the challenge stays valid
			log.Printf("stepauth: otp delivery failed for principal %s: %v", principal.ID, err)
			e.metricInc(MetricOTPDeliveryFailure)
			e.emitAudit(ctx, AuditEvent{
				Timestamp:    time.Now().UTC(),
				EventType:    auditOTPDeliveryFailed,
				PrincipalID:  principal.ID,
				MFASessionID: requirement.SessionID,
				Error:        errString(err),
			})
		}
	}

	pending, err := e.tokens.issueMFAPending(principal.ID, principal.Identifier, level, requirement.SessionID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricAuthMFARequired)
	e.emitAudit(ctx, AuditEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    auditAuthMFARequired,
		PrincipalID:  principal.ID,
		Identifier:   principal.Identifier,
		Level:        level.String(),
		Device:       actx.Device(),
		IP:           actx.IPAddress,
		MFASessionID: requirement.SessionID,
		Success:      true,
	})

	return &AuthResult{
		Outcome: PartiallyAuthenticated(level, []CredentialKind{verified}, requirement),
		Tokens:  pending,
	}, nil
}

// failedResult wraps a login failure as the failed outcome variant. The
// reason carries only sentinel text, never backend detail.
func failedResult(cause error) *AuthResult {
	return &AuthResult{Outcome: Failed(errString(cause))}
}

func (e *Engine) authFailed(ctx context.Context, actx AuthContext, principalID, identifier string, cause error) {
	e.metricInc(MetricAuthFailure)
	e.emitAudit(ctx, AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   auditAuthFailure,
		PrincipalID: principalID,
		Identifier:  identifier,
		Device:      actx.Device(),
		IP:          actx.IPAddress,
		Error:       errString(cause),
	})
}
