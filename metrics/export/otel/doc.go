// Package otel provides OpenTelemetry metric bindings for engine counters
// and the verification-latency histogram.
//
// [NewExporter] registers Int64ObservableCounter instruments for each engine
// counter and Int64ObservableGauge per histogram bucket. A single callback
// reads [stepauth.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel
