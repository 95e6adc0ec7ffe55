package dispatch

import (
	"context"
	"log/slog"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/application"
	"github.com/Mthadube/jbcapital-sub001/pkg/metrics"
	"github.com/Mthadube/jbcapital-sub001/pkg/mq"
)

// KafkaQueue publishes side-effect tasks to a broker topic so external
// consumers (SMS adapters, audit pipelines) execute them. The recipient
// is used as the message key to keep per-recipient ordering.
type KafkaQueue struct {
	producer *mq.Producer
	topic    string
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewKafkaQueue builds the broker-backed queue. metrics may be nil.
func NewKafkaQueue(producer *mq.Producer, topic string, m *metrics.Metrics, logger *slog.Logger) *KafkaQueue {
	return &KafkaQueue{producer: producer, topic: topic, metrics: m, logger: logger}
}

// Enqueue publishes the task. Publish failures are logged and counted
// only; the authoritative state change already committed.
func (q *KafkaQueue) Enqueue(t application.Task) {
	if err := q.producer.SendMessage(context.Background(), q.topic, t.Recipient, t); err != nil {
		if q.metrics != nil {
			q.metrics.TasksDropped.Inc()
		}
		q.logger.Error("side-effect task publish failed", "kind", t.Kind, "error", err)
		return
	}
	if q.metrics != nil {
		q.metrics.TasksEnqueued.Inc()
	}
}

var _ application.TaskQueue = (*KafkaQueue)(nil)
