// Package middleware exposes net/http guards gating handlers on verified
// token claims.
//
// # Guards
//
//   - [RequireAccess]: full-access token at or above a minimum trust level.
//   - [AllowPending]: any verified token, including MFA-pending ones.
//
// Each guard reads the Authorization header, calls Engine.VerifyAccess, and
// injects the verified [stepauth.Access] into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into engine calls. It does NOT
// implement verification itself.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly.
//   - Touch Redis or any store.
//   - Make decisions beyond pass/reject from the verified claims.
package middleware
