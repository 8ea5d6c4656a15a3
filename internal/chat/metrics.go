package chat

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the chat gauges and counters exported on /metrics.
type Metrics struct {
	connections prometheus.Gauge
	messages    prometheus.Counter
	dropped     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_connections",
			Help: "Open chat websocket connections on this instance.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat messages accepted on this instance.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_dropped_connections_total",
			Help: "Connections dropped because their send buffer was full.",
		}),
	}
	for _, c := range []prometheus.Collector{m.connections, m.messages, m.dropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) connected() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) disconnected() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) message() {
	if m != nil {
		m.messages.Inc()
	}
}

func (m *Metrics) drop() {
	if m != nil {
		m.dropped.Inc()
	}
}
