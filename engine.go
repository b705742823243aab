package stepauth

import (
	"time"

	"github.com/stepauth/stepauth/internal/audit"
)

// Engine is the step-up authentication core. Build one through [Builder] and
// share it; all methods are safe for concurrent use.
type Engine struct {
	config      Config
	principals  PrincipalStore
	credentials CredentialStore
	challenges  OTPChallengeStore
	verifier    *credentialVerifier
	policy      StepUpPolicy
	deliverer   OTPDeliverer
	tokens      *tokenService
	metrics     *Metrics
	audit       *audit.Dispatcher
}

// Close stops the audit dispatcher after draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports audit events discarded under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// VerificationKeys exposes the current verification key material keyed by
// kid, for callers that publish a key set. With hs256 this is the shared
// secret; do not serve it publicly.
func (e *Engine) VerificationKeys() map[string][]byte {
	if e == nil || e.tokens == nil {
		return map[string][]byte{}
	}
	return e.tokens.manager.VerificationKeys()
}

// VerifyAccess parses and verifies an access token and returns the claims
// view handlers act on. MFA-pending tokens verify too; callers gate on
// [Access.Kind].
func (e *Engine) VerifyAccess(tokenStr string) (*Access, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	claims, err := e.tokens.verify(tokenStr)
	e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	if err != nil {
		e.metricInc(MetricTokenVerifyFailure)
		return nil, err
	}
	if claims.TokenKind == kindRefresh {
		e.metricInc(MetricTokenVerifyFailure)
		return nil, ErrInvalidToken
	}

	level, ok := ParseTrustLevel(claims.AuthLevel)
	if !ok || level.Value() != claims.AuthLevelValue {
		e.metricInc(MetricTokenVerifyFailure)
		return nil, ErrInvalidToken
	}

	e.metricInc(MetricTokenVerifySuccess)
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return &Access{
		PrincipalID: claims.Subject,
		Identifier:  claims.Identifier,
		Level:       level,
		Kind:        TokenKind(claims.TokenKind),
		TokenID:     claims.ID,
		ExpiresAt:   exp,
	}, nil
}
