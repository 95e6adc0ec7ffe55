// Package mq provides a thin Kafka producer used for fanning out
// side-effect tasks to external consumers.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// ProducerConfig configures the Kafka writer.
type ProducerConfig struct {
	Brokers      []string
	MaxRetries   int
	RetryBackoff time.Duration
}

// Producer publishes JSON payloads to Kafka topics.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a producer. Acks from all replicas are required so a
// published task is durable once SendMessage returns.
func NewProducer(cfg ProducerConfig) *Producer {
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			AllowAutoTopicCreation: true,
			Compression:            kafka.Gzip,
			RequiredAcks:           kafka.RequireAll,
			MaxAttempts:            retries,
			WriteBackoffMin:        backoff,
			WriteBackoffMax:        backoff * 10,
		},
	}
}

// SendMessage marshals value to JSON and publishes it under key. The key
// keeps per-recipient ordering stable across partitions.
func (p *Producer) SendMessage(ctx context.Context, topic, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
