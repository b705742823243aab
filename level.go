package stepauth

// TrustLevel is the ordinal strength of proof behind a session. Levels are
// totally ordered by their numeric value; tokens carry both the name and the
// value so downstream authorization can compare numerically.
type TrustLevel uint8

const (
	// TrustLow is single-factor proof (password or social assertion).
	TrustLow TrustLevel = 1
	// TrustMedium is password plus a delivered one-time code.
	TrustMedium TrustLevel = 2
	// TrustHigh is passkey/WebAuthn proof.
	TrustHigh TrustLevel = 3
)

// AtLeast reports whether l meets or exceeds other.
func (l TrustLevel) AtLeast(other TrustLevel) bool {
	return l >= other
}

// Value returns the numeric ordinal carried in token claims.
func (l TrustLevel) Value() int {
	return int(l)
}

func (l TrustLevel) String() string {
	switch l {
	case TrustLow:
		return "LOW"
	case TrustMedium:
		return "MEDIUM"
	case TrustHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// ParseTrustLevel maps a level name from a token claim back to its TrustLevel.
// Unknown names return false; callers must treat that as an invalid token.
func ParseTrustLevel(name string) (TrustLevel, bool) {
	switch name {
	case "LOW":
		return TrustLow, true
	case "MEDIUM":
		return TrustMedium, true
	case "HIGH":
		return TrustHigh, true
	default:
		return 0, false
	}
}

// maxLevel is the escalation rule: a completed factor never downgrades the
// level already achieved.
func maxLevel(a, b TrustLevel) TrustLevel {
	if a >= b {
		return a
	}
	return b
}
