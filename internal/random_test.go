package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestNewOTPLengthAndCharset(t *testing.T) {
	for _, digits := range []int{4, 6, 10} {
		code, err := NewOTP(digits)
		if err != nil {
			t.Fatalf("NewOTP(%d): %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("NewOTP(%d) length = %d", digits, len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("NewOTP(%d) produced non-digit %q", digits, code)
			}
		}
	}
}

func TestNewOTPRejectsBadLength(t *testing.T) {
	for _, digits := range []int{0, 3, 11, -1} {
		if _, err := NewOTP(digits); err == nil {
			t.Errorf("NewOTP(%d) accepted", digits)
		}
	}
}

func TestDigestValue(t *testing.T) {
	sum := sha256.Sum256([]byte("refresh-opaque-value"))
	want := hex.EncodeToString(sum[:])

	if got := DigestValue("refresh-opaque-value"); got != want {
		t.Fatalf("DigestValue = %q, want %q", got, want)
	}
	if DigestValue("a") == DigestValue("b") {
		t.Fatal("distinct values collide")
	}
}
