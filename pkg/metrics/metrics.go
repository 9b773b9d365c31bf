package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds named metric vectors on a private registry.
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}

	m.counters["weather_requests_total"] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_requests_total",
			Help: "Total number of weather API requests per leg",
		},
		[]string{"leg", "status"},
	)

	m.counters["cache_operations_total"] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache slot reads and writes",
		},
		[]string{"operation", "result"},
	)

	m.counters["geolocation_requests_total"] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geolocation_requests_total",
			Help: "Total number of device position requests",
		},
		[]string{"result"},
	)

	m.counters["connectivity_transitions_total"] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connectivity_transitions_total",
			Help: "Total number of connectivity transitions handled",
		},
		[]string{"state"},
	)

	m.counters["http_requests_total"] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of control API requests",
		},
		[]string{"route", "status"},
	)

	m.histograms["weather_api_duration_seconds"] = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_api_duration_seconds",
			Help:    "Duration of weather API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"leg"},
	)

	m.histograms["http_request_duration_seconds"] = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of control API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.gauges["connectivity_online"] = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "connectivity_online",
			Help: "1 when the controller considers the device online",
		},
		[]string{},
	)

	m.gauges["cache_hit_rate"] = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_hit_rate",
			Help: "Cache hit rate percentage",
		},
		[]string{"cache_type"},
	)

	m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, counter := range m.counters {
		m.registry.MustRegister(counter)
	}
	for _, histogram := range m.histograms {
		m.registry.MustRegister(histogram)
	}
	for _, gauge := range m.gauges {
		m.registry.MustRegister(gauge)
	}

	return m
}

func (m *Metrics) IncrementCounter(name string, labelValues ...string) {
	if m == nil {
		return
	}
	if counter, exists := m.counters[name]; exists {
		counter.WithLabelValues(labelValues...).Inc()
	}
}

func (m *Metrics) ObserveHistogram(name string, value float64, labelValues ...string) {
	if m == nil {
		return
	}
	if histogram, exists := m.histograms[name]; exists {
		histogram.WithLabelValues(labelValues...).Observe(value)
	}
}

func (m *Metrics) SetGauge(name string, value float64, labelValues ...string) {
	if m == nil {
		return
	}
	if gauge, exists := m.gauges[name]; exists {
		gauge.WithLabelValues(labelValues...).Set(value)
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CounterValue reads the current value of one labelled counter, 0 when unknown
func (m *Metrics) CounterValue(name string, labelValues ...string) float64 {
	if m == nil {
		return 0
	}
	counter, exists := m.counters[name]
	if !exists {
		return 0
	}
	c, err := counter.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return 0
	}

	dtoMetric := &dto.Metric{}
	if err := c.Write(dtoMetric); err != nil || dtoMetric.Counter == nil {
		return 0
	}
	return dtoMetric.Counter.GetValue()
}

// GetCacheHitRate returns the last recorded hit rate percentage (0-100) for a cache type
func (m *Metrics) GetCacheHitRate(cacheType string) float64 {
	if m == nil {
		return 0
	}
	gauge, exists := m.gauges["cache_hit_rate"]
	if !exists {
		return 0
	}

	metricChan := make(chan prometheus.Metric, 8)
	go func() {
		gauge.Collect(metricChan)
		close(metricChan)
	}()

	var rate float64
	for metric := range metricChan {
		dtoMetric := &dto.Metric{}
		if err := metric.Write(dtoMetric); err != nil {
			continue
		}
		for _, label := range dtoMetric.Label {
			if label.GetName() == "cache_type" && label.GetValue() == cacheType && dtoMetric.Gauge != nil {
				rate = dtoMetric.Gauge.GetValue()
			}
		}
	}
	return rate
}

// GetAverageWeatherLatency returns the mean weather API latency in milliseconds, 0 without samples
func (m *Metrics) GetAverageWeatherLatency() float64 {
	if m == nil {
		return 0
	}
	histogram, exists := m.histograms["weather_api_duration_seconds"]
	if !exists {
		return 0
	}

	metricChan := make(chan prometheus.Metric, 8)
	go func() {
		histogram.Collect(metricChan)
		close(metricChan)
	}()

	var totalSum float64
	var totalCount uint64
	for metric := range metricChan {
		dtoMetric := &dto.Metric{}
		if err := metric.Write(dtoMetric); err != nil {
			continue
		}
		if dtoMetric.Histogram != nil {
			totalSum += dtoMetric.Histogram.GetSampleSum()
			totalCount += dtoMetric.Histogram.GetSampleCount()
		}
	}

	if totalCount == 0 {
		return 0
	}
	return totalSum / float64(totalCount) * 1000.0
}
