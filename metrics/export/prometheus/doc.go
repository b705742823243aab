// Package prometheus renders engine counters in Prometheus text exposition
// format.
//
// [NewExporter] accepts an engine and exposes an http.Handler that serves all
// counters plus the verification latency histogram. Counter names are
// prefixed stepauth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the
//     Handler themselves.
//   - Mutate engine state.
package prometheus
