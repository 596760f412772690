package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one server. Each server owns its registry.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.HistogramVec
	instances  *prometheus.CounterVec
	fields     *prometheus.CounterVec
	renders    *prometheus.CounterVec
	reloads    *prometheus.CounterVec
	formsTotal prometheus.Gauge
}

// NewMetrics registers the server collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formrt_http_request_duration_seconds",
			Help:    "Duration of preview server requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		instances: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formrt_instance_operations_total",
			Help: "Instance add/remove requests by outcome (changed, noop, error)",
		}, []string{"form", "operation", "outcome"}),
		fields: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formrt_field_updates_total",
			Help: "Field property updates by property",
		}, []string{"form", "property"}),
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formrt_renders_total",
			Help: "Rendered responses by renderer",
		}, []string{"form", "renderer"}),
		reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formrt_definition_reloads_total",
			Help: "Definition loads triggered by the file watcher or reset",
		}, []string{"result"}),
		formsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "formrt_forms_loaded",
			Help: "Number of definitions currently loaded",
		}),
	}
}

// Registry exposes the underlying registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))
}

// Middleware records request durations keyed by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) instanceOperation(form, operation string, changed bool, err error) {
	outcome := "noop"
	switch {
	case err != nil:
		outcome = "error"
	case changed:
		outcome = "changed"
	}
	m.instances.WithLabelValues(form, operation, outcome).Inc()
}

func (m *Metrics) fieldUpdate(form, property string) {
	m.fields.WithLabelValues(form, property).Inc()
}

func (m *Metrics) render(form, renderer string) {
	m.renders.WithLabelValues(form, renderer).Inc()
}

func (m *Metrics) reload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}

func (m *Metrics) setForms(n int) {
	m.formsTotal.Set(float64(n))
}
