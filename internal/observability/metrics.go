package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aare_monitor"

// Metrics holds the Prometheus collectors for the poller, fetcher and renderers.
type Metrics struct {
	// Fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,network_error,http_error,parse_error,config_error}
	FetchDuration prometheus.Histogram

	// Scheduler metrics.
	PollerRunning       prometheus.Gauge
	PollIntervalSeconds prometheus.Gauge
	LastSuccess         prometheus.Gauge

	// Render metrics.
	Renders        *prometheus.CounterVec // labels: kind={data,error}
	RenderFailures *prometheus.CounterVec // labels: renderer

	// Latest readings, only updated when the payload carries them.
	WaterTemperature prometheus.Gauge
	Flow             prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.PollerRunning,
		m.PollIntervalSeconds,
		m.LastSuccess,
		m.Renders,
		m.RenderFailures,
		m.WaterTemperature,
		m.Flow,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Telemetry fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Aare.guru API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poller_running",
			Help:      "1 while the poll loop is active, 0 after teardown.",
		}),
		PollIntervalSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poll_interval_seconds",
			Help:      "Currently configured poll interval.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful fetch.",
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Display state projections by kind.",
		}, []string{"kind"}),
		RenderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Renderer errors by renderer.",
		}, []string{"renderer"}),
		WaterTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "water_temperature_celsius",
			Help:      "Last reported water temperature.",
		}),
		Flow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flow_cubic_meters_per_second",
			Help:      "Last reported river discharge.",
		}),
	}
}
