package repository

import (
	"context"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	pkgkafka "StockLens/pkg/kafka"
)

// KafkaPublisher publishes derived events keyed by ticker, so events of one
// ticker stay ordered on one partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishDerived(ctx context.Context, ev *models.DerivedEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Ticker), ev)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
