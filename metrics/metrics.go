package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for attendance attempts.
const (
	OutcomeMarked        = "marked"
	OutcomeAlreadyMarked = "already_marked"
	OutcomeNotRecognized = "not_recognized"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	registry *prometheus.Registry

	UsersRegistered  prometheus.Counter
	AttendanceEvents *prometheus.CounterVec
	MatchDistance    prometheus.Histogram
	ExtractFailures  prometheus.Counter
}

// New creates the collectors on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "face_attendance_users_registered_total",
			Help: "Total number of users registered",
		}),
		AttendanceEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "face_attendance_attempts_total",
			Help: "Attendance attempts by outcome",
		}, []string{"outcome"}),
		MatchDistance: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "face_attendance_match_distance",
			Help:    "Distance between a live face and its closest registered embedding",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 1.0, 1.5},
		}),
		ExtractFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "face_attendance_extract_failures_total",
			Help: "Embedding extractions that failed for reasons other than no face",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncUsersRegistered() {
	m.UsersRegistered.Inc()
}

func (m *Metrics) IncAttendance(outcome string) {
	m.AttendanceEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDistance(d float64) {
	m.MatchDistance.Observe(d)
}

func (m *Metrics) IncExtractFailures() {
	m.ExtractFailures.Inc()
}
