package relay

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the engine's per-run instrumentation. Each engine owns a
// private registry; the run is a sequential CLI process, so metrics back the
// end-of-run summary rather than an exposition endpoint.
type metrics struct {
	attempts  *prometheus.CounterVec
	retries   prometheus.Counter
	fallbacks *prometheus.CounterVec
	repeats   prometheus.Counter
	elapsed   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "choom",
				Subsystem: "relay",
				Name:      "attempts_total",
				Help:      "Physical attempts by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "choom",
			Subsystem: "relay",
			Name:      "retries_total",
			Help:      "Attempts beyond the first within a logical turn.",
		}),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "choom",
				Subsystem: "relay",
				Name:      "fallbacks_total",
				Help:      "Fallback transitions by the stage they landed on.",
			},
			[]string{"stage"},
		),
		repeats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "choom",
			Subsystem: "relay",
			Name:      "repeats_prevented_total",
			Help:      "Exact-repeat replies intercepted by the repeat guard.",
		}),
		elapsed: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "choom",
				Subsystem: "relay",
				Name:      "attempt_duration_seconds",
				Help:      "Attempt round-trip duration by stage.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
	reg.MustRegister(m.attempts, m.retries, m.fallbacks, m.repeats, m.elapsed)
	return m
}

func (m *metrics) observe(rec *TranscriptRecord) {
	result := "success"
	if rec.Error != nil {
		result = "failure"
	}
	m.attempts.WithLabelValues(string(rec.Stage), result).Inc()
	if rec.Retry > 0 {
		m.retries.Inc()
	}
	if rec.FallbackReason != nil {
		m.fallbacks.WithLabelValues(string(rec.Stage)).Inc()
	}
	if rec.RepeatPrevented {
		m.repeats.Inc()
	}
	m.elapsed.WithLabelValues(string(rec.Stage)).Observe(float64(rec.ElapsedMS) / 1000)
}
