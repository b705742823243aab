package stepauth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stepauth/stepauth/social"
)

func newTestVerifier(t *testing.T) *credentialVerifier {
	t.Helper()
	return &credentialVerifier{
		hasher:   testHasher(t),
		passkeys: Ed25519PasskeyVerifier{},
		resolver: social.NewMockResolver(),
	}
}

func TestVerifyPassword(t *testing.T) {
	v := newTestVerifier(t)
	hash, err := v.hasher.Hash("hunter2-but-longer")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	stored := PasswordCredential{Hash: hash, Verified: true}

	ok, err := v.verify(context.Background(), PasswordCredential{Plain: "hunter2-but-longer"}, stored)
	if err != nil || !ok {
		t.Fatalf("correct password: ok=%v err=%v", ok, err)
	}

	ok, err = v.verify(context.Background(), PasswordCredential{Plain: "wrong-password"}, stored)
	if err != nil || ok {
		t.Fatalf("wrong password: ok=%v err=%v", ok, err)
	}

	ok, err = v.verify(context.Background(), PasswordCredential{}, stored)
	if err != nil || ok {
		t.Fatalf("empty password: ok=%v err=%v", ok, err)
	}
}

func TestVerifyKindMismatchFails(t *testing.T) {
	v := newTestVerifier(t)
	hash, _ := v.hasher.Hash("hunter2-but-longer")

	// provided OTP against a stored password must fail, never match
	ok, err := v.verify(context.Background(), OTPCredential{Code: "123456"}, PasswordCredential{Hash: hash})
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}
	if ok {
		t.Fatal("kind mismatch must be a verification failure")
	}
}

func TestVerifyOTPConstantCompare(t *testing.T) {
	v := newTestVerifier(t)
	stored := OTPCredential{Code: "483920", Verified: true}

	ok, err := v.verify(context.Background(), OTPCredential{Code: "483920"}, stored)
	if err != nil || !ok {
		t.Fatalf("matching code: ok=%v err=%v", ok, err)
	}
	ok, _ = v.verify(context.Background(), OTPCredential{Code: "000000"}, stored)
	if ok {
		t.Fatal("wrong code must not verify")
	}
	ok, _ = v.verify(context.Background(), OTPCredential{}, OTPCredential{})
	if ok {
		t.Fatal("empty codes must not verify")
	}
}

func TestVerifyPasskeyAssertion(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	challenge := "nonce-1234"
	sig := ed25519.Sign(priv, []byte(challenge))

	v := newTestVerifier(t)
	stored := PasskeyCredential{CredentialID: "cred-1", PublicKey: pub, Verified: true}

	ok, err := v.verify(context.Background(), PasskeyCredential{
		CredentialID: "cred-1", Challenge: challenge, Signature: sig,
	}, stored)
	if err != nil || !ok {
		t.Fatalf("valid assertion: ok=%v err=%v", ok, err)
	}

	ok, _ = v.verify(context.Background(), PasskeyCredential{
		CredentialID: "cred-1", Challenge: "different-nonce", Signature: sig,
	}, stored)
	if ok {
		t.Fatal("signature over another challenge must not verify")
	}

	ok, _ = v.verify(context.Background(), PasskeyCredential{
		CredentialID: "cred-2", Challenge: challenge, Signature: sig,
	}, stored)
	if ok {
		t.Fatal("unknown credential id must not verify")
	}
}

func TestVerifySocial(t *testing.T) {
	resolver := social.NewMockResolver()
	resolver.Register("google", &social.UserInfo{UserID: "g-123", Email: "a@example.com"})

	v := &credentialVerifier{hasher: testHasher(t), passkeys: Ed25519PasskeyVerifier{}, resolver: resolver}
	stored := SocialCredential{Provider: "google", SocialUserID: "g-123", Verified: true}

	ok, err := v.verify(context.Background(), SocialCredential{Provider: "google", SocialUserID: "g-123"}, stored)
	if err != nil || !ok {
		t.Fatalf("known identity: ok=%v err=%v", ok, err)
	}

	// provider rejects the identity: bad credentials, not an outage
	ok, err = v.verify(context.Background(), SocialCredential{Provider: "google", SocialUserID: "g-999"}, stored)
	if err != nil || ok {
		t.Fatalf("unknown identity: ok=%v err=%v", ok, err)
	}

	ok, _ = v.verify(context.Background(), SocialCredential{Provider: "github", SocialUserID: "g-123"}, stored)
	if ok {
		t.Fatal("provider mismatch must not verify")
	}
}
