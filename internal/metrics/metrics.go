package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "xrdmon_send_build_info",
			Help: "Build information of the monitoring packet emitter",
		},
		[]string{"version", "commit", "date"},
	)

	DatagramsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xrdmon_send_datagrams_total",
		Help: "Total number of datagrams sent per target",
	}, []string{"target"})

	BytesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xrdmon_send_bytes_total",
		Help: "Total number of payload and header bytes sent per target",
	}, []string{"target"})

	SendErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xrdmon_send_errors_total",
		Help: "Total number of send failures per target",
	}, []string{"target"})

	SendDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xrdmon_send_duration_seconds",
		Help:    "Duration of individual datagram sends",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // ≈ 1µs .. 260ms
	}, []string{"target"})

	StreamsInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "xrdmon_send_streams_inflight",
		Help: "Number of destination streams currently sending",
	})
)
