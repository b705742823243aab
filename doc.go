// Package stepauth provides a step-up authentication and token lifecycle
// engine: multi-factor credential verification, trust-level scaled JWT
// issuance, single-use refresh token rotation with device binding, and
// policy-driven MFA escalation.
//
// The engine is embeddable: callers bring their own principal and credential
// stores, the engine brings Redis-backed refresh and OTP challenge stores,
// argon2id password hashing, and HS256/Ed25519 signing. Engine methods are
// safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// stepauth is the public surface. It exposes [Engine], [Builder], [Config],
// the credential union, and value types. Persistence encodings, audit
// dispatch, and crypto helpers live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
//   - Keep per-attempt state anywhere but the [AuthContext] value the caller
//     passes in.
//   - Import any sub-package that re-imports stepauth.
package stepauth
