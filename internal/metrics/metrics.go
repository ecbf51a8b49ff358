package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hpungsan/minutes/internal/notes"
)

var (
	global *Metrics
	once   sync.Once
)

// Metrics holds the Prometheus collectors for minutes.
//
// Metrics:
//   - minutes_classifications_total - notes blocks classified
//   - minutes_lines_total{bucket} - lines per outcome (decisions, actions, highlights, dropped)
//   - minutes_http_requests_total{route,code} - web UI requests
type Metrics struct {
	ClassificationsTotal prometheus.Counter
	LinesTotal           *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
}

// Default returns the process-wide collectors, registering them on first use.
func Default() *Metrics {
	once.Do(func() {
		global = &Metrics{
			ClassificationsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "minutes_classifications_total",
				Help: "Total number of notes blocks classified",
			}),
			LinesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "minutes_lines_total",
					Help: "Total number of non-empty note lines by outcome bucket",
				},
				[]string{"bucket"},
			),
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "minutes_http_requests_total",
					Help: "Total number of web UI requests by route and status code",
				},
				[]string{"route", "code"},
			),
		}
	})
	return global
}

// ObserveClassification records one Classify call over lines non-empty lines.
func (m *Metrics) ObserveClassification(lines int, stats notes.Stats) {
	m.ClassificationsTotal.Inc()
	m.LinesTotal.WithLabelValues(string(notes.BucketDecisions)).Add(float64(stats.Decisions))
	m.LinesTotal.WithLabelValues(string(notes.BucketActions)).Add(float64(stats.Actions))
	m.LinesTotal.WithLabelValues(string(notes.BucketHighlights)).Add(float64(stats.Highlights))
	if dropped := lines - stats.Total; dropped > 0 {
		m.LinesTotal.WithLabelValues("dropped").Add(float64(dropped))
	}
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int) {
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
