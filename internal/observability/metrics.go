// Package observability exposes Prometheus metrics for the engine, the
// loader, the remote client and the HTTP surface.
package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"netlens/internal/domain"
)

// Collector bundles every netlens metric. All methods are safe on a nil
// receiver so callers can run without metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Frames         prometheus.Counter
	FrameDurations prometheus.Histogram
	Swaps          *prometheus.CounterVec
	PointerClicks  *prometheus.CounterVec
	Dropped        *prometheus.CounterVec

	RemoteDurations *prometheus.HistogramVec

	TopologyNodes prometheus.Gauge
	TopologyLinks prometheus.Gauge
	StreamClients prometheus.Gauge
}

// NewCollector registers metrics against reg, defaulting to the global
// registry when nil. Metrics that already exist in reg are reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.HTTPRequests, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlens_http_requests_total",
		Help: "HTTP requests handled, labeled by method, route and status code.",
	}, []string{"method", "route", "code"}), "netlens_http_requests_total"); err != nil {
		return nil, err
	}
	if c.HTTPDurations, err = registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netlens_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"}), "netlens_http_request_duration_seconds"); err != nil {
		return nil, err
	}
	if c.Frames, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netlens_frames_rendered_total",
		Help: "Frames composed by the render pipeline.",
	}), "netlens_frames_rendered_total"); err != nil {
		return nil, err
	}
	if c.FrameDurations, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "netlens_frame_duration_seconds",
		Help:    "Time spent composing one frame.",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.033},
	}), "netlens_frame_duration_seconds"); err != nil {
		return nil, err
	}
	if c.Swaps, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlens_topology_swaps_total",
		Help: "Topology snapshots installed, labeled by topology key.",
	}, []string{"topology"}), "netlens_topology_swaps_total"); err != nil {
		return nil, err
	}
	if c.PointerClicks, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlens_pointer_clicks_total",
		Help: "Pointer clicks, labeled by hit or miss.",
	}, []string{"result"}), "netlens_pointer_clicks_total"); err != nil {
		return nil, err
	}
	if c.Dropped, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlens_dropped_elements_total",
		Help: "Topology elements dropped at load time, labeled by data error kind.",
	}, []string{"kind"}), "netlens_dropped_elements_total"); err != nil {
		return nil, err
	}
	if c.RemoteDurations, err = registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netlens_remote_request_duration_seconds",
		Help:    "Simulation service call latency, labeled by operation and outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "outcome"}), "netlens_remote_request_duration_seconds"); err != nil {
		return nil, err
	}
	if c.TopologyNodes, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netlens_topology_nodes",
		Help: "Nodes in the current snapshot.",
	}), "netlens_topology_nodes"); err != nil {
		return nil, err
	}
	if c.TopologyLinks, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netlens_topology_links",
		Help: "Links in the current snapshot.",
	}), "netlens_topology_links"); err != nil {
		return nil, err
	}
	if c.StreamClients, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netlens_stream_clients",
		Help: "Connected SSE and WebSocket clients.",
	}), "netlens_stream_clients"); err != nil {
		return nil, err
	}

	return c, nil
}

// Handler exposes a ready-to-use /metrics handler
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// FrameRendered records one composed frame
func (c *Collector) FrameRendered(d time.Duration) {
	if c == nil {
		return
	}
	c.Frames.Inc()
	c.FrameDurations.Observe(d.Seconds())
}

// TopologySwapped records a snapshot swap
func (c *Collector) TopologySwapped(key string) {
	if c == nil {
		return
	}
	if key == "" {
		key = "custom"
	}
	c.Swaps.WithLabelValues(key).Inc()
}

// PointerHit records the outcome of a click
func (c *Collector) PointerHit(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.PointerClicks.WithLabelValues(result).Inc()
}

// RecordDropped counts an element discarded by the loader
func (c *Collector) RecordDropped(kind domain.DataErrorKind) {
	if c == nil {
		return
	}
	c.Dropped.WithLabelValues(string(kind)).Inc()
}

// ObserveRemote records a simulation service call
func (c *Collector) ObserveRemote(op string, d time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.RemoteDurations.WithLabelValues(op, outcome).Observe(d.Seconds())
}

// SetTopologyCounts updates the snapshot size gauges
func (c *Collector) SetTopologyCounts(nodes, links int) {
	if c == nil {
		return
	}
	c.TopologyNodes.Set(float64(nodes))
	c.TopologyLinks.Set(float64(links))
}

// SetStreamClients updates the connected client gauge
func (c *Collector) SetStreamClients(n int) {
	if c == nil {
		return
	}
	c.StreamClients.Set(float64(n))
}

// Middleware records request counts and durations. The route label is the
// matched ServeMux pattern, so path parameters do not explode cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		c.HTTPDurations.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working behind the middleware
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func registerCounter(reg prometheus.Registerer, m prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(m); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, m prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(m); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return m, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, m prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(m); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return m, nil
}
