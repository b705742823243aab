package stepauth

import "testing"

func TestTrustLevelOrdering(t *testing.T) {
	if !TrustHigh.AtLeast(TrustMedium) || !TrustMedium.AtLeast(TrustLow) {
		t.Fatal("expected HIGH >= MEDIUM >= LOW")
	}
	if TrustLow.AtLeast(TrustMedium) {
		t.Fatal("LOW must not satisfy MEDIUM")
	}
	if !TrustMedium.AtLeast(TrustMedium) {
		t.Fatal("a level must satisfy itself")
	}
}

func TestTrustLevelNamesAndValues(t *testing.T) {
	cases := []struct {
		level TrustLevel
		name  string
		value int
	}{
		{TrustLow, "LOW", 1},
		{TrustMedium, "MEDIUM", 2},
		{TrustHigh, "HIGH", 3},
	}
	for _, tc := range cases {
		if tc.level.String() != tc.name {
			t.Errorf("String() = %q, want %q", tc.level.String(), tc.name)
		}
		if tc.level.Value() != tc.value {
			t.Errorf("Value() = %d, want %d", tc.level.Value(), tc.value)
		}
		parsed, ok := ParseTrustLevel(tc.name)
		if !ok || parsed != tc.level {
			t.Errorf("ParseTrustLevel(%q) = %v, %v", tc.name, parsed, ok)
		}
	}
	if _, ok := ParseTrustLevel("ROOT"); ok {
		t.Fatal("unknown level name must not parse")
	}
}

func TestMaxLevelNeverDowngrades(t *testing.T) {
	if got := maxLevel(TrustHigh, TrustMedium); got != TrustHigh {
		t.Fatalf("maxLevel(HIGH, MEDIUM) = %v", got)
	}
	if got := maxLevel(TrustLow, TrustMedium); got != TrustMedium {
		t.Fatalf("maxLevel(LOW, MEDIUM) = %v", got)
	}
}

func TestCredentialKindParsing(t *testing.T) {
	for _, kind := range []CredentialKind{KindPassword, KindOTP, KindSocial, KindPasskey} {
		parsed, ok := ParseCredentialKind(string(kind))
		if !ok || parsed != kind {
			t.Errorf("ParseCredentialKind(%q) = %v, %v", kind, parsed, ok)
		}
	}
	if _, ok := ParseCredentialKind("FINGERPRINT"); ok {
		t.Fatal("unknown kind must not parse")
	}
}

func TestCredentialMinLevels(t *testing.T) {
	cases := []struct {
		cred  Credential
		level TrustLevel
	}{
		{PasswordCredential{}, TrustLow},
		{OTPCredential{}, TrustMedium},
		{SocialCredential{}, TrustLow},
		{PasskeyCredential{}, TrustHigh},
	}
	for _, tc := range cases {
		if tc.cred.MinLevel() != tc.level {
			t.Errorf("%s MinLevel = %v, want %v", tc.cred.Kind(), tc.cred.MinLevel(), tc.level)
		}
	}
}

func TestMFARequirementCompletion(t *testing.T) {
	req := RequireOTP("session-1")
	if req.IsComplete() {
		t.Fatal("fresh OTP requirement must not be complete")
	}
	if got := req.Remaining(); len(got) != 1 || got[0] != MethodOTP {
		t.Fatalf("Remaining = %v", got)
	}

	req.CompletedMethods = []MFAMethod{MethodOTP}
	if !req.IsComplete() {
		t.Fatal("requirement with all methods completed must be complete")
	}
	if got := req.Remaining(); len(got) != 0 {
		t.Fatalf("Remaining after completion = %v", got)
	}

	if !NoMFA("s").IsComplete() {
		t.Fatal("empty requirement is trivially complete")
	}
}
