// Package stores provides Redis-backed persistence for the transient state
// of the token lifecycle: single-use refresh-token records and single-use
// OTP challenges.
//
// # Design
//
// Each store persists a versioned, binary-encoded record in Redis with a TTL
// matching the record's lifetime, so expired state evaporates without a
// sweeper. Refresh records are consumed with a single atomic DEL, which makes
// exactly one concurrent rotation the winner. OTP challenges mutate under
// WATCH/MULTI optimistic transactions with retry on contention, and code
// comparisons are constant time.
//
// # Architecture boundaries
//
// This package owns persistence and concurrency control. It does NOT issue
// tokens, generate codes, or make authentication decisions.
//
// # What this package must NOT do
//
//   - Import the root package or any sibling internal package.
//   - Store plaintext refresh-token values or OTP codes.
//   - Use non-constant-time comparisons for secret matching.
package stores
