package stepauth

// MFAMethod names a second-factor mechanism.
type MFAMethod string

// MethodOTP is a delivered one-time code, the only step-up method the default
// policy requires.
const MethodOTP MFAMethod = "OTP"

// MFARequirement describes whether an attempt needs a second factor, which
// methods are required and already completed, and the session id correlating
// the pending state across requests.
type MFARequirement struct {
	Required         bool
	RequiredMethods  []MFAMethod
	CompletedMethods []MFAMethod
	SessionID        string
}

// NoMFA is the requirement for attempts that need no second factor.
func NoMFA(sessionID string) MFARequirement {
	return MFARequirement{SessionID: sessionID}
}

// RequireOTP is the requirement for attempts that must complete an OTP
// challenge before full access.
func RequireOTP(sessionID string) MFARequirement {
	return MFARequirement{
		Required:        true,
		RequiredMethods: []MFAMethod{MethodOTP},
		SessionID:       sessionID,
	}
}

// IsComplete reports whether every required method has been completed.
func (r MFARequirement) IsComplete() bool {
	for _, m := range r.RequiredMethods {
		if !containsMethod(r.CompletedMethods, m) {
			return false
		}
	}
	return true
}

// Remaining lists required methods not yet completed.
func (r MFARequirement) Remaining() []MFAMethod {
	var out []MFAMethod
	for _, m := range r.RequiredMethods {
		if !containsMethod(r.CompletedMethods, m) {
			out = append(out, m)
		}
	}
	return out
}

func containsMethod(methods []MFAMethod, m MFAMethod) bool {
	for _, v := range methods {
		if v == m {
			return true
		}
	}
	return false
}

// Outcome is the result of an authentication attempt. It represents the
// current authentication state, not a bare pass/fail: an attempt can be
// fully authenticated, partially authenticated pending a second factor, or
// failed. Business outcomes are values; protocol failures are errors.
type Outcome struct {
	authenticated bool
	level         TrustLevel
	completed     []CredentialKind
	mfa           *MFARequirement
	failureReason string
}

// Authenticated builds the fully-trusted outcome.
func Authenticated(level TrustLevel, completed ...CredentialKind) Outcome {
	return Outcome{authenticated: true, level: level, completed: completed}
}

// PartiallyAuthenticated builds the pending-second-factor outcome. The
// credential verified so far is recorded, but IsAuthenticated stays false
// until the requirement completes.
func PartiallyAuthenticated(level TrustLevel, completed []CredentialKind, req MFARequirement) Outcome {
	return Outcome{level: level, completed: completed, mfa: &req}
}

// Failed builds the failure outcome.
func Failed(reason string) Outcome {
	return Outcome{failureReason: reason}
}

// IsAuthenticated is true only for the fully-trusted variant.
func (o Outcome) IsAuthenticated() bool { return o.authenticated }

// RequiresMFA reports whether a second factor is still outstanding.
func (o Outcome) RequiresMFA() bool {
	return o.mfa != nil && o.mfa.Required
}

// Level is the trust level achieved so far. Zero when the attempt failed.
func (o Outcome) Level() TrustLevel { return o.level }

// CompletedCredentials lists the credential kinds proven in this attempt.
func (o Outcome) CompletedCredentials() []CredentialKind { return o.completed }

// MFARequirement returns the outstanding requirement, or the zero value and
// false when none exists.
func (o Outcome) MFARequirement() (MFARequirement, bool) {
	if o.mfa == nil {
		return MFARequirement{}, false
	}
	return *o.mfa, true
}

// FailureReason is the internal reason for a failed outcome. Empty otherwise.
func (o Outcome) FailureReason() string { return o.failureReason }
