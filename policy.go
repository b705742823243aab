package stepauth

// StepUpPolicy decides whether an attempt that already verified a credential
// must additionally complete a second factor. Implementations must be pure:
// same context in, same requirement out.
type StepUpPolicy interface {
	CheckMFARequirement(actx AuthContext, sessionID string) MFARequirement
}

// StepUpPolicyFunc adapts a function to the StepUpPolicy interface.
type StepUpPolicyFunc func(actx AuthContext, sessionID string) MFARequirement

func (f StepUpPolicyFunc) CheckMFARequirement(actx AuthContext, sessionID string) MFARequirement {
	return f(actx, sessionID)
}

// DefaultStepUpPolicy requires an OTP when the attempt is flagged as
// suspicious and nothing otherwise.
func DefaultStepUpPolicy() StepUpPolicy {
	return StepUpPolicyFunc(func(actx AuthContext, sessionID string) MFARequirement {
		if actx.SuspiciousActivity {
			return RequireOTP(sessionID)
		}
		return NoMFA(sessionID)
	})
}
