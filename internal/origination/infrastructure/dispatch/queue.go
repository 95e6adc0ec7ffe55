// Package dispatch executes side-effect tasks after the authoritative
// state change has committed. Execution failures are logged and counted,
// never propagated: delivery problems must not look like transaction
// problems.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/application"
	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
	"github.com/Mthadube/jbcapital-sub001/pkg/metrics"
)

// Queue is the in-process task queue: a bounded channel drained by a
// single worker. Enqueue never blocks; when the buffer is full the task
// is dropped and counted, which is acceptable for best-effort effects.
type Queue struct {
	tasks   chan application.Task
	sms     domain.SMSGateway
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewQueue builds the queue. metrics may be nil.
func NewQueue(size int, sms domain.SMSGateway, m *metrics.Metrics, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{
		tasks:   make(chan application.Task, size),
		sms:     sms,
		metrics: m,
		logger:  logger,
	}
}

// Enqueue hands a task to the worker without blocking the caller.
func (q *Queue) Enqueue(t application.Task) {
	select {
	case q.tasks <- t:
		if q.metrics != nil {
			q.metrics.TasksEnqueued.Inc()
		}
	default:
		if q.metrics != nil {
			q.metrics.TasksDropped.Inc()
		}
		q.logger.Warn("side-effect queue full, task dropped", "kind", t.Kind)
	}
}

// Run drains the queue until ctx is cancelled. Intended to run on its own
// goroutine.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-q.tasks:
			q.execute(ctx, t)
		}
	}
}

func (q *Queue) execute(ctx context.Context, t application.Task) {
	switch t.Kind {
	case application.TaskSMS:
		if q.metrics != nil {
			q.metrics.SMSTotal.Inc()
		}
		if err := q.sms.Send(ctx, t.Recipient, t.Message); err != nil {
			if q.metrics != nil {
				q.metrics.SMSFailuresTotal.Inc()
			}
			q.logger.Error("sms delivery failed", "to", t.Recipient, "error", err)
		}
	case application.TaskLocalAlert:
		// The engine's stand-in for the UI's toast/sound surface.
		q.logger.Info("alert", "user_id", t.Recipient, "title", t.Title, "message", t.Message)
	default:
		q.logger.Warn("unknown side-effect task", "kind", t.Kind)
	}
}

var _ application.TaskQueue = (*Queue)(nil)
