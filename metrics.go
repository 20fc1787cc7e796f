package goSession

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one session counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts committed successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts committed failed logins of any kind.
	MetricLoginFailure
	// MetricLoginInvalidCredentials counts failures classified as KindInvalidCredentials.
	MetricLoginInvalidCredentials
	// MetricLoginForbidden counts failures classified as KindForbidden.
	MetricLoginForbidden
	// MetricLoginRateLimited counts failures classified as KindRateLimited.
	MetricLoginRateLimited
	// MetricLoginServerError counts failures classified as KindServerError.
	MetricLoginServerError
	// MetricLoginTimeout counts failures classified as KindTimeout.
	MetricLoginTimeout
	// MetricLoginNetworkUnreachable counts failures classified as KindNetworkUnreachable.
	MetricLoginNetworkUnreachable
	// MetricLoginInvalidResponse counts failures classified as KindInvalidResponse.
	MetricLoginInvalidResponse
	// MetricLoginUnclassified counts failures classified as KindUnclassified.
	MetricLoginUnclassified
	// MetricLoginRejectedInFlight counts Login calls refused by the in-flight guard.
	MetricLoginRejectedInFlight
	// MetricLoginSuperseded counts login results discarded because of a Logout.
	MetricLoginSuperseded
	// MetricLogout counts Logout calls.
	MetricLogout
	// MetricLogoutNotifySuccess counts server logout notifications that succeeded.
	MetricLogoutNotifySuccess
	// MetricLogoutNotifyFailure counts server logout notifications that failed.
	MetricLogoutNotifyFailure
	// MetricHydrateRestored counts hydrations that restored a session.
	MetricHydrateRestored
	// MetricHydrateEmpty counts hydrations that found no session.
	MetricHydrateEmpty
	// MetricHydrateRejected counts hydrations that discarded an unusable record.
	MetricHydrateRejected
	// MetricPersistFailure counts failed Save or Clear calls.
	MetricPersistFailure
	// MetricLoginLatency is the login round-trip histogram.
	MetricLoginLatency
	metricIDCount
)

var kindMetric = map[ErrorKind]MetricID{
	KindInvalidCredentials: MetricLoginInvalidCredentials,
	KindForbidden:          MetricLoginForbidden,
	KindRateLimited:        MetricLoginRateLimited,
	KindServerError:        MetricLoginServerError,
	KindTimeout:            MetricLoginTimeout,
	KindNetworkUnreachable: MetricLoginNetworkUnreachable,
	KindInvalidResponse:    MetricLoginInvalidResponse,
	KindUnclassified:       MetricLoginUnclassified,
}

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and the login latency histogram. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram of id. Only MetricLoginLatency has one.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricLoginLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns empty maps when metrics are disabled.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricLoginLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricLoginLatency].buckets[i])
		}
		s.Histograms[MetricLoginLatency] = buckets
	}

	return s
}

// bucketIndex maps a latency onto the bounds
// 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 50:
		return 0
	case ms <= 100:
		return 1
	case ms <= 250:
		return 2
	case ms <= 500:
		return 3
	case ms <= 1000:
		return 4
	case ms <= 2500:
		return 5
	case ms <= 5000:
		return 6
	default:
		return 7
	}
}
