// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers   prometheus.Gauge
	ActiveRooms     prometheus.Gauge
	ActionsReceived prometheus.Counter
	SpinsTotal      prometheus.Counter
	SpinPayout      prometheus.Histogram
	ShotsTotal      prometheus.Counter
	RoomsSweptTotal prometheus.Counter
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected players",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		ActionsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_received_total",
			Help:      "Total number of client actions received",
		}),
		SpinsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spins_total",
			Help:      "Total number of resolved spins",
		}),
		SpinPayout: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "spin_payout_ctok",
			Help:      "Payout distribution per spin",
			Buckets:   []float64{25, 50, 100, 1000, 2000, 3000, 5000},
		}),
		ShotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shots_total",
			Help:      "Total number of shots taken",
		}),
		RoomsSweptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_swept_total",
			Help:      "Stale empty rooms removed by the janitor",
		}),
	}

	reg.MustRegister(
		m.OnlinePlayers,
		m.ActiveRooms,
		m.ActionsReceived,
		m.SpinsTotal,
		m.SpinPayout,
		m.ShotsTotal,
		m.RoomsSweptTotal,
	)

	return m
}

type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
}

// NewMonitor 每个实例带独立的指标注册表，重复构建不会撞默认注册表
func NewMonitor(namespace string) *Monitor {
	registry := prometheus.NewRegistry()
	return &Monitor{
		metrics:   NewMetrics(namespace, registry),
		registry:  registry,
		startTime: time.Now(),
	}
}

// StartServer 在独立地址上暴露 /metrics 和 expvar 运行指标
func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	go http.ListenAndServe(addr, mux)
}

// Uptime 进程启动以来的时长，健康检查上报用
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

func (m *Monitor) IncActionsReceived() {
	m.metrics.ActionsReceived.Inc()
}

func (m *Monitor) ObserveSpin(payout int) {
	m.metrics.SpinsTotal.Inc()
	m.metrics.SpinPayout.Observe(float64(payout))
}

func (m *Monitor) IncShots() {
	m.metrics.ShotsTotal.Inc()
}

func (m *Monitor) AddRoomsSwept(count int) {
	m.metrics.RoomsSweptTotal.Add(float64(count))
}
