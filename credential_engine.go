package stepauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/stepauth/stepauth/social"
)

// credentialVerifier dispatches verification over the closed credential
// union. Verification failures are reported as false, never as errors;
// errors mean a collaborator could not answer.
type credentialVerifier struct {
	hasher   PasswordHasher
	passkeys PasskeyVerifier
	resolver social.Resolver
}

// verify checks the provided credential against the stored one. The stored
// credential's kind must match; a mismatch is a verification failure, not an
// error, so callers cannot be tricked into accepting a weaker kind.
func (v *credentialVerifier) verify(ctx context.Context, provided, stored Credential) (bool, error) {
	if provided == nil || stored == nil {
		return false, nil
	}
	if provided.Kind() != stored.Kind() {
		return false, nil
	}

	switch p := provided.(type) {
	case PasswordCredential:
		s, ok := stored.(PasswordCredential)
		if !ok || s.Hash == "" || p.Plain == "" {
			return false, nil
		}
		return v.hasher.Verify(p.Plain, s.Hash)

	case OTPCredential:
		s, ok := stored.(OTPCredential)
		if !ok || s.Code == "" || p.Code == "" {
			return false, nil
		}
		return subtle.ConstantTimeCompare([]byte(p.Code), []byte(s.Code)) == 1, nil

	case SocialCredential:
		s, ok := stored.(SocialCredential)
		if !ok {
			return false, nil
		}
		return v.verifySocial(ctx, p, s)

	case PasskeyCredential:
		s, ok := stored.(PasskeyCredential)
		if !ok || len(s.PublicKey) == 0 {
			return false, nil
		}
		if subtle.ConstantTimeCompare([]byte(p.CredentialID), []byte(s.CredentialID)) != 1 {
			return false, nil
		}
		return v.passkeys.VerifyAssertion(s.PublicKey, []byte(p.Challenge), p.Signature)

	default:
		// the union is sealed; an unknown variant is a programming error
		return false, fmt.Errorf("%w: unknown credential kind %s", ErrInvalidCredentials, provided.Kind())
	}
}

func (v *credentialVerifier) verifySocial(ctx context.Context, provided, stored SocialCredential) (bool, error) {
	if v.resolver == nil {
		return false, fmt.Errorf("%w: no social resolver configured", ErrSocialAuthFailed)
	}
	if provided.Provider != stored.Provider {
		return false, nil
	}

	info, err := v.resolver.Resolve(ctx, provided.Provider, provided.SocialUserID)
	if err != nil {
		var perr *social.ProviderError
		if errors.As(err, &perr) && perr.Kind == social.ErrorKindClient {
			// provider rejected the identity; treat as bad credentials
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrSocialAuthFailed, err)
	}
	if info == nil || info.UserID == "" {
		return false, nil
	}
	return info.UserID == stored.SocialUserID, nil
}
