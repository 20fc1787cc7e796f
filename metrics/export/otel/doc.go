// Package otel bridges goSession Store metrics into OpenTelemetry.
//
// [NewOTelExporter] registers an Int64ObservableCounter per Store counter, an
// Int64ObservableGauge per latency bucket, and a gauge for pending logout
// notifications. One callback reads the Store's snapshot per collection.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate Store state.
package otel
