package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics хранит счётчики HTTP-запросов сервера.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	wsConnections   prometheus.Gauge
	registry        *prometheus.Registry
}

// New создаёт реестр метрик с пользовательскими коллекторами.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "membership",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Количество HTTP-запросов по маршруту, методу и статусу.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "membership",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Длительность обработки HTTP-запросов.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		wsConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "membership",
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Текущее количество WebSocket-подключений.",
		}),
	}
}

// Middleware собирает метрики для каждого запроса gin.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler возвращает HTTP-обработчик для /metrics.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// WSConnected фиксирует новое WebSocket-подключение.
func (m *Metrics) WSConnected() {
	m.wsConnections.Inc()
}

// WSDisconnected фиксирует закрытие WebSocket-подключения.
func (m *Metrics) WSDisconnected() {
	m.wsConnections.Dec()
}
