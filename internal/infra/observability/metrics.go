package observability

import (
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Party resolution outcomes.
const (
	ResolutionCached       = "cached"
	ResolutionFetched      = "fetched"
	ResolutionSynthesized  = "synthesized"
	ResolutionInvalidState = "invalid_state"
	ResolutionError        = "error"
	ResolutionUnresolvable = "unresolvable"
)

var resolutionOutcomes = []string{
	ResolutionCached, ResolutionFetched, ResolutionSynthesized,
	ResolutionInvalidState, ResolutionError, ResolutionUnresolvable,
}

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	externalErrors   *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	partyResolutions *prometheus.CounterVec
	events           *prometheus.CounterVec
	alerts           *prometheus.CounterVec
	trxActions       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bfa_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_external_errors_total",
				Help: "Total errors from backend services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		partyResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_party_resolutions_total",
				Help: "Session party resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_tracking_events_total",
				Help: "Analytics events emitted by the portal workflows.",
			},
			[]string{"event"},
		),
		alerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_user_alerts_total",
				Help: "User visible error alerts by component.",
			},
			[]string{"component"},
		),
		trxActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_transaction_actions_total",
				Help: "Transaction row actions by action and result.",
			},
			[]string{"action", "result"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrPartyResolution counts a party resolution outcome.
func (m *Metrics) IncrPartyResolution(outcome string) {
	m.partyResolutions.WithLabelValues(outcome).Inc()
}

// IncrEvent counts a tracking event.
func (m *Metrics) IncrEvent(event string) {
	m.events.WithLabelValues(event).Inc()
}

// IncrAlert counts an alert dispatched to the user.
func (m *Metrics) IncrAlert(component string) {
	m.alerts.WithLabelValues(component).Inc()
}

// IncrTransactionAction counts a transaction row action.
func (m *Metrics) IncrTransactionAction(action, result string) {
	m.trxActions.WithLabelValues(action, result).Inc()
}

// GetPortalSnapshot returns a snapshot suitable for GET /v1/metrics/portal.
// Prometheus counters are cumulative, so the period is always "all_time".
func (m *Metrics) GetPortalSnapshot() *domain.PortalMetrics {
	resolutions := make(map[string]int64, len(resolutionOutcomes))
	total := float64(0)
	for _, o := range resolutionOutcomes {
		v := getCounterValue(m.partyResolutions, o)
		resolutions[o] = int64(v)
		total += v
	}

	synthesizedRate := float64(0)
	if total > 0 {
		synthesizedRate = float64(resolutions[ResolutionSynthesized]) / total
	}

	return &domain.PortalMetrics{
		PartyResolutions:   resolutions,
		SynthesizedRate:    synthesizedRate,
		PartyCacheHitRate:  hitRate(getCounterValue(m.cacheHits, "party"), getCounterValue(m.cacheMisses, "party")),
		PageCacheHitRate:   hitRate(getCounterValue(m.cacheHits, "transactions"), getCounterValue(m.cacheMisses, "transactions")),
		ExternalErrors:     int64(sumCounter(m.externalErrors)),
		AlertsDispatched:   int64(sumCounter(m.alerts)),
		TransactionsCancel: int64(getCounterValue(m.trxActions, "cancel", "success")),
		Period:             "all_time",
	}
}

func hitRate(hits, misses float64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return hits / (hits + misses)
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounter adds up every child of a CounterVec.
func sumCounter(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	total := float64(0)
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
