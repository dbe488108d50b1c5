package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

// SaramaProducer publishes through an IBM/sarama sync producer.
type SaramaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewSaramaConfig is the producer config used in production: wait for all
// in-sync replicas, hash partitioning on the message key.
func NewSaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return cfg
}

func NewSaramaProducer(brokers []string, topic string) (*SaramaProducer, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewSaramaConfig())
	if err != nil {
		return nil, err
	}
	return WrapSarama(producer, topic), nil
}

// WrapSarama adapts an existing producer, e.g. a sarama mock in tests.
func WrapSarama(producer sarama.SyncProducer, topic string) *SaramaProducer {
	return &SaramaProducer{producer: producer, topic: topic}
}

// Send ignores ctx; sarama's sync producer has no per-call cancellation.
func (p *SaramaProducer) Send(_ context.Context, key []byte, value []byte) error {
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	return err
}

func (p *SaramaProducer) Close() error {
	return p.producer.Close()
}
