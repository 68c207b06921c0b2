// Package metrics holds the Prometheus collectors the site reports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reviewhub"

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	CommentActions *prometheus.CounterVec
	ThemeToggles   prometheus.Counter
	FilterQueries  *prometheus.CounterVec
	ReviewsLoaded  prometheus.Gauge
	PanelSessions  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		CommentActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_actions_total",
			Help:      "Comment panel actions by kind and whether they changed the list.",
		}, []string{"action", "result"}),
		ThemeToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_toggles_total",
			Help:      "Theme toggles.",
		}),
		FilterQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_queries_total",
			Help:      "Grid renders by the kind of filter applied.",
		}, []string{"kind"}),
		ReviewsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reviews_loaded",
			Help:      "Reviews in the current snapshot.",
		}),
		PanelSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "panel_sessions",
			Help:      "Open comment panel WebSocket sessions.",
		}),
	}
	m.Registry.MustRegister(
		m.CommentActions,
		m.ThemeToggles,
		m.FilterQueries,
		m.ReviewsLoaded,
		m.PanelSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CommentAction(action string, applied bool) {
	if m == nil {
		return
	}
	result := "ignored"
	if applied {
		result = "applied"
	}
	m.CommentActions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) ThemeToggled() {
	if m == nil {
		return
	}
	m.ThemeToggles.Inc()
}

// Filtered records one grid render. kind is one of none, category, query, both.
func (m *Metrics) Filtered(category bool, query bool) {
	if m == nil {
		return
	}
	kind := "none"
	switch {
	case category && query:
		kind = "both"
	case category:
		kind = "category"
	case query:
		kind = "query"
	}
	m.FilterQueries.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetReviews(n int) {
	if m == nil {
		return
	}
	m.ReviewsLoaded.Set(float64(n))
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.PanelSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.PanelSessions.Dec()
}
