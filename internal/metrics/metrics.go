package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keithlinneman/gzassets/internal/version"
)

// Asset request outcomes used as the result label of asset_requests_total.
const (
	ResultHit         = "hit"
	ResultPassthrough = "passthrough"
	ResultMiss        = "miss"
	ResultInvalid     = "invalid"
	ResultIndex       = "index"
	ResultError       = "error"
)

type ServerMetrics struct {
	reg       *prometheus.Registry
	handler   http.Handler
	inflight  prometheus.Gauge
	reqTotal  *prometheus.CounterVec
	reqDur    *prometheus.HistogramVec
	respBytes *prometheus.HistogramVec

	errorsTotal    *prometheus.CounterVec
	httpPanicTotal prometheus.Counter
	buildInfo      *prometheus.GaugeVec

	ratelimitDeniedTotal   prometheus.Counter
	ratelimitCapacityTotal prometheus.Counter

	profilingActive prometheus.Gauge

	assetRequests          *prometheus.CounterVec
	assetDecompressedBytes prometheus.Counter
	assetDecompressDur     prometheus.Histogram
	assetRegistryEntries   prometheus.Gauge
	assetRegistryBytes     prometheus.Gauge
}

// New returns a fresh registry with Go/process collectors, HTTP metrics and
// asset serving metrics. HTTP labels are method, route pattern and status
// only; asset paths are never used as label values.
func New() *ServerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &ServerMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by method and route",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		respBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Response size by method and route",
			Buckets: prometheus.ExponentialBuckets(256, 4, 10),
		}, []string{"method", "route"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total 5xx HTTP server errors by method and route",
		}, []string{"method", "route"}),
		httpPanicTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_panic_total",
			Help: "Total number of recovered handler panics",
		}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build metadata (value is always 1)",
		}, []string{"app", "component", "version", "commit", "commit_date", "build_date", "vcs_dirty", "go_version"}),
		ratelimitDeniedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Total requests rejected by rate limiter",
		}),
		ratelimitCapacityTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_capacity_total",
			Help: "Total number of times the rate limiter visitor table was full",
		}),
		profilingActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "profiling_active",
			Help: "Whether continuous profiling is active (1) or disabled/failed (0)",
		}),
		assetRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_requests_total",
			Help: "Asset handler requests by outcome (hit, passthrough, miss, invalid, index, error)",
		}, []string{"result"}),
		assetDecompressedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asset_decompressed_bytes_total",
			Help: "Total bytes produced by per-request asset decompression",
		}),
		assetDecompressDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "asset_decompress_duration_seconds",
			Help:    "Time spent decompressing one asset",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		assetRegistryEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "asset_registry_entries",
			Help: "Number of assets in the embedded registry",
		}),
		assetRegistryBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "asset_registry_compressed_bytes",
			Help: "Total gzip payload held by the embedded registry",
		}),
	}
	reg.MustRegister(
		m.inflight,
		m.reqTotal,
		m.reqDur,
		m.respBytes,
		m.errorsTotal,
		m.httpPanicTotal,
		m.buildInfo,
		m.ratelimitDeniedTotal,
		m.ratelimitCapacityTotal,
		m.profilingActive,
		m.assetRequests,
		m.assetDecompressedBytes,
		m.assetDecompressDur,
		m.assetRegistryEntries,
		m.assetRegistryBytes,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	m.reg = reg
	return m
}

func (m *ServerMetrics) Handler() http.Handler {
	return m.handler
}

func (m *ServerMetrics) IncHttpPanic() {
	m.httpPanicTotal.Inc()
}

// set once at startup.
func (m *ServerMetrics) SetBuildInfoFromVersion(app, component string, vi version.Info) {
	dirty := "unknown"
	if vi.VCSDirty != nil {
		dirty = strconv.FormatBool(*vi.VCSDirty)
	}
	m.buildInfo.With(prometheus.Labels{
		"app":         app,
		"component":   component,
		"version":     vi.Version,
		"commit":      vi.Commit,
		"commit_date": vi.CommitDate,
		"build_date":  vi.BuildDate,
		"go_version":  vi.GoVersion,
		"vcs_dirty":   dirty,
	}).Set(1)
}

func (m *ServerMetrics) IncRateLimitDenied() {
	m.ratelimitDeniedTotal.Inc()
}

func (m *ServerMetrics) IncRateLimitCapacity() {
	m.ratelimitCapacityTotal.Inc()
}

func (m *ServerMetrics) SetProfilingActive(active bool) {
	if active {
		m.profilingActive.Set(1)
	} else {
		m.profilingActive.Set(0)
	}
}

func (m *ServerMetrics) IncAssetRequest(result string) {
	m.assetRequests.WithLabelValues(result).Inc()
}

func (m *ServerMetrics) ObserveDecompress(n int, d time.Duration) {
	m.assetDecompressedBytes.Add(float64(n))
	m.assetDecompressDur.Observe(d.Seconds())
}

// set once at startup.
func (m *ServerMetrics) SetRegistry(entries, compressedBytes int) {
	m.assetRegistryEntries.Set(float64(entries))
	m.assetRegistryBytes.Set(float64(compressedBytes))
}
