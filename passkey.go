package stepauth

import (
	"crypto/ed25519"
	"errors"
)

// Ed25519PasskeyVerifier checks passkey assertions with raw ed25519 keys.
// It is the default [PasskeyVerifier]; integrations with full WebAuthn
// attestation plug in their own.
type Ed25519PasskeyVerifier struct{}

func (Ed25519PasskeyVerifier) VerifyAssertion(publicKey, challenge, signature []byte) (bool, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return false, errors.New("invalid ed25519 public key size")
	}
	if len(challenge) == 0 || len(signature) == 0 {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), challenge, signature), nil
}
