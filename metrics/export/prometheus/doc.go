// Package prometheus renders goSession Store metrics in the Prometheus text
// exposition format.
//
// [NewPrometheusExporter] reads a [goSession.Store] and exposes an
// [http.Handler]. Counter names are prefixed gosession_*_total; the single
// histogram is gosession_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate Store state.
package prometheus
