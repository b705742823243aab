package stepauth

// CredentialKind identifies one variant of the credential union.
type CredentialKind string

const (
	// KindPassword is a knowledge factor verified against a one-way hash.
	KindPassword CredentialKind = "PASSWORD"
	// KindOTP is a delivered one-time code.
	KindOTP CredentialKind = "OTP"
	// KindSocial is an assertion resolved through an external provider.
	KindSocial CredentialKind = "SOCIAL"
	// KindPasskey is a WebAuthn/passkey assertion.
	KindPasskey CredentialKind = "PASSKEY"
)

// ParseCredentialKind maps a wire-level kind label to a CredentialKind.
func ParseCredentialKind(s string) (CredentialKind, bool) {
	switch CredentialKind(s) {
	case KindPassword, KindOTP, KindSocial, KindPasskey:
		return CredentialKind(s), true
	default:
		return "", false
	}
}

// Credential is the closed union of proof-of-identity variants. The
// verification engine dispatches on the concrete type; adding a kind is a
// compile-time-checked change. Implementations outside this package are not
// possible.
type Credential interface {
	Kind() CredentialKind
	// MinLevel is the minimum trust level a successful verification of this
	// kind can satisfy.
	MinLevel() TrustLevel
	// IsVerified reports whether the stored credential completed its
	// out-of-band verification (e.g. email ownership for OTP delivery).
	IsVerified() bool

	sealed()
}

// PasswordCredential carries a one-way hash when stored, and the plaintext
// only transiently while a verification is in flight.
type PasswordCredential struct {
	Hash     string
	Plain    string
	Verified bool
}

func (PasswordCredential) Kind() CredentialKind { return KindPassword }
func (PasswordCredential) MinLevel() TrustLevel { return TrustLow }
func (c PasswordCredential) IsVerified() bool   { return c.Verified }
func (PasswordCredential) sealed()              {}

// OTPCredential is a delivered single-use code. Stored codes are invalidated
// by the credential-storage collaborator after any check, success or failure.
type OTPCredential struct {
	Code            string
	DeliveryChannel string
	Verified        bool
}

func (OTPCredential) Kind() CredentialKind { return KindOTP }
func (OTPCredential) MinLevel() TrustLevel { return TrustMedium }
func (c OTPCredential) IsVerified() bool   { return c.Verified }
func (OTPCredential) sealed()              {}

// SocialCredential is a provider assertion resolved through an external
// user-info lookup.
type SocialCredential struct {
	Provider     string
	SocialUserID string
	Email        string
	Verified     bool
}

func (SocialCredential) Kind() CredentialKind { return KindSocial }
func (SocialCredential) MinLevel() TrustLevel { return TrustLow }
func (c SocialCredential) IsVerified() bool   { return c.Verified }
func (SocialCredential) sealed()              {}

// PasskeyCredential carries the registered credential id and public key when
// stored, and the assertion material while a verification is in flight.
type PasskeyCredential struct {
	CredentialID string
	PublicKey    []byte
	Challenge    string
	Signature    []byte
	Verified     bool
}

func (PasskeyCredential) Kind() CredentialKind { return KindPasskey }
func (PasskeyCredential) MinLevel() TrustLevel { return TrustHigh }
func (c PasskeyCredential) IsVerified() bool   { return c.Verified }
func (PasskeyCredential) sealed()              {}
