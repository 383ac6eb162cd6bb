package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the complaint module. Tracks submission
// and transition volume, ticket id generator health, and tracker cache
// efficiency.
type Metrics struct {
	Submissions        *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	TicketIDFallbacks  prometheus.Counter
	TrackerCacheHits   prometheus.Counter
	TrackerCacheMisses prometheus.Counter
	SubmitDuration     prometheus.Histogram
}

// New creates a Metrics instance with all complaint module metrics registered.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiceye_complaints_submitted_total",
			Help: "Total complaints submitted, by complaint type",
		}, []string{"type"}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiceye_complaint_transitions_total",
			Help: "Total status transitions applied, by target status",
		}, []string{"to_status"}),
		TicketIDFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiceye_ticket_id_fallbacks_total",
			Help: "Ticket ids minted via the timestamp fallback after exhausting random attempts",
		}),
		TrackerCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiceye_tracker_cache_hits_total",
			Help: "Public tracker lookups served from cache",
		}),
		TrackerCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiceye_tracker_cache_misses_total",
			Help: "Public tracker lookups that fell through to the store",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "civiceye_complaint_submit_duration_seconds",
			Help:    "Duration of complaint submission including ticket id allocation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveSubmit records the duration of a submission.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
