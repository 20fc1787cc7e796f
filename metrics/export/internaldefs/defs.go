package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one Store counter.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one Store histogram.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Committed successful logins."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Committed failed logins."},
	{ID: goSession.MetricLoginInvalidCredentials, Name: "gosession_login_invalid_credentials_total", Help: "Logins rejected as invalid credentials."},
	{ID: goSession.MetricLoginForbidden, Name: "gosession_login_forbidden_total", Help: "Logins rejected as forbidden."},
	{ID: goSession.MetricLoginRateLimited, Name: "gosession_login_rate_limited_total", Help: "Logins rejected by server rate limiting."},
	{ID: goSession.MetricLoginServerError, Name: "gosession_login_server_error_total", Help: "Logins failed with a server error."},
	{ID: goSession.MetricLoginTimeout, Name: "gosession_login_timeout_total", Help: "Logins that timed out."},
	{ID: goSession.MetricLoginNetworkUnreachable, Name: "gosession_login_network_unreachable_total", Help: "Logins failed because the server was unreachable."},
	{ID: goSession.MetricLoginInvalidResponse, Name: "gosession_login_invalid_response_total", Help: "Logins answered without admin or token."},
	{ID: goSession.MetricLoginUnclassified, Name: "gosession_login_unclassified_total", Help: "Logins failed for an unclassified reason."},
	{ID: goSession.MetricLoginRejectedInFlight, Name: "gosession_login_rejected_in_flight_total", Help: "Login calls refused while another was pending."},
	{ID: goSession.MetricLoginSuperseded, Name: "gosession_login_superseded_total", Help: "Login results discarded after a logout."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Logout calls."},
	{ID: goSession.MetricLogoutNotifySuccess, Name: "gosession_logout_notify_success_total", Help: "Server logout notifications that succeeded."},
	{ID: goSession.MetricLogoutNotifyFailure, Name: "gosession_logout_notify_failure_total", Help: "Server logout notifications that failed."},
	{ID: goSession.MetricHydrateRestored, Name: "gosession_hydrate_restored_total", Help: "Hydrations that restored a session."},
	{ID: goSession.MetricHydrateEmpty, Name: "gosession_hydrate_empty_total", Help: "Hydrations that found no usable session."},
	{ID: goSession.MetricHydrateRejected, Name: "gosession_hydrate_rejected_total", Help: "Stored records discarded at hydration."},
	{ID: goSession.MetricPersistFailure, Name: "gosession_persist_failure_total", Help: "Failed writes to the session slot."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricLoginLatency, Name: "gosession_login_latency_seconds", Help: "Login round-trip latency."},
}

// HistogramBounds are the upper bounds of the latency buckets, in seconds.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds for instrument names.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// Gauge names shared by both exporters.
const (
	AuditDroppedName        = "gosession_audit_dropped_total"
	AuditDroppedHelp        = "Dropped audit events due to dispatcher backpressure."
	PendingNotificationName = "gosession_logout_notify_pending"
	PendingNotificationHelp = "Logout notifications still running."
)

// NormalizeBuckets copies raw into a fixed-size bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the running totals
// Prometheus expects.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
