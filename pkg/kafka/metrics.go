package kafka

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type consumerMetrics struct {
	queueDepth    *prometheus.GaugeVec
	handled       *prometheus.CounterVec
	retries       *prometheus.CounterVec
	handleLatency *prometheus.HistogramVec
}

type producerMetrics struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newConsumerMetrics(reg prometheus.Registerer) (*consumerMetrics, error) {
	m := &consumerMetrics{
		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "stocklens_kafka_consumer_queue_depth", Help: "Number of messages waiting in consumer queue"},
			[]string{"topic"},
		),
		handled: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "stocklens_kafka_consumer_messages_total", Help: "Messages handled by result"},
			[]string{"topic", "result"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "stocklens_kafka_consumer_retries_total", Help: "Handler retries"},
			[]string{"topic"},
		),
		handleLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "stocklens_kafka_consumer_handle_seconds", Help: "Handling time per message"},
			[]string{"topic"},
		),
	}
	if reg == nil {
		return m, nil
	}
	return m, registerAll(reg, m.queueDepth, m.handled, m.retries, m.handleLatency)
}

func newProducerMetrics(reg prometheus.Registerer) (*producerMetrics, error) {
	m := &producerMetrics{
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "stocklens_kafka_producer_messages_total", Help: "Total messages published to Kafka"},
			[]string{"topic", "result"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "stocklens_kafka_producer_bytes_total", Help: "Total payload bytes published"},
			[]string{"topic"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "stocklens_kafka_producer_publish_seconds", Help: "Publish latency", Buckets: prometheus.DefBuckets},
			[]string{"topic"},
		),
	}
	if reg == nil {
		return m, nil
	}
	return m, registerAll(reg, m.messages, m.bytes, m.latency)
}

// registerAll tolerates collectors that are already registered.
func registerAll(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
