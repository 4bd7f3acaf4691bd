package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "globe",
		Subsystem: "stream",
		Name:      "active_connections",
		Help:      "Current number of WebSocket clients",
	})

	framesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "globe",
		Subsystem: "stream",
		Name:      "frames_sent_total",
		Help:      "Frames queued to clients",
	})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "globe",
		Subsystem: "stream",
		Name:      "frames_dropped_total",
		Help:      "Frames dropped because a client send buffer was full",
	})

	frameBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "globe",
		Subsystem: "stream",
		Name:      "frame_size_bytes",
		Help:      "Encoded frame size in bytes",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
	})
)
