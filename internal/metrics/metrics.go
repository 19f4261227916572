package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"tradingview-telegram-relay/internal/types"
)

const (
	namespace = "tradingview"
	subsystem = "webhook"

	RequestsTotal   = namespace + "_" + subsystem + "_requests_total"
	DeliveriesTotal = namespace + "_" + subsystem + "_deliveries_total"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	Requests         *prometheus.CounterVec
	Deliveries       *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram

	registry *prometheus.Registry
	mutex    sync.Mutex
}

func New() *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "The total number of handled HTTP requests",
			},
			[]string{"path", "code"},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "deliveries_total",
				Help:      "The total number of Telegram delivery attempts by outcome",
			},
			[]string{"outcome"},
		),
		DeliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "delivery_duration_seconds",
			Help:      "Time spent on a single Telegram delivery attempt",
			Buckets:   prometheus.DefBuckets,
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.Requests)
	m.registry.MustRegister(m.Deliveries)
	m.registry.MustRegister(m.DeliveryDuration)
	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// ObserveRequest counts one finished HTTP request.
func (m *Metrics) ObserveRequest(path string, code int) {
	m.Requests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// ObserveDelivery counts one delivery attempt.
func (m *Metrics) ObserveDelivery(outcome string, elapsed time.Duration) {
	m.Deliveries.WithLabelValues(outcome).Inc()
	m.DeliveryDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Mux returns the metrics and health endpoints of the metrics server.
func (m *Metrics) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", healthCheckHandler)
	return mux
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Snapshot returns the current value of every counter worth persisting.
func (m *Metrics) Snapshot() ([]types.MetricSample, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var samples []types.MetricSample
	for _, family := range families {
		if !persisted(family.GetName()) || family.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			samples = append(samples, types.MetricSample{
				Name:   family.GetName(),
				Labels: labels,
				Value:  metric.GetCounter().GetValue(),
			})
		}
	}
	return samples, nil
}

// Restore adds previously saved counter values. Unknown metrics and label sets
// that no longer match are skipped.
func (m *Metrics) Restore(samples []types.MetricSample) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, s := range samples {
		var vec *prometheus.CounterVec
		switch s.Name {
		case RequestsTotal:
			vec = m.Requests
		case DeliveriesTotal:
			vec = m.Deliveries
		default:
			log.Debugf("Skipping unknown metric %s", s.Name)
			continue
		}

		counter, err := vec.GetMetricWith(prometheus.Labels(s.Labels))
		if err != nil {
			log.Warnf("Failed to restore metric %s%v: %v", s.Name, s.Labels, err)
			continue
		}
		if s.Value > 0 {
			counter.Add(s.Value)
		}
	}
}

func persisted(name string) bool {
	return name == RequestsTotal || name == DeliveriesTotal
}
