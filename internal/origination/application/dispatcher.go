package application

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
	"github.com/Mthadube/jbcapital-sub001/pkg/metrics"
)

// TaskKind names a side-effect task.
type TaskKind string

const (
	// TaskSMS delivers a message through the SMS gateway.
	TaskSMS TaskKind = "sms"
	// TaskLocalAlert surfaces a local alert (toast/sound equivalent in
	// the engine: a structured log event).
	TaskLocalAlert TaskKind = "local_alert"
)

// Task is one best-effort side effect, dispatched after the authoritative
// state change has committed. Task execution can fail without affecting
// the state change that produced it.
type Task struct {
	Kind      TaskKind `json:"kind"`
	Recipient string   `json:"recipient,omitempty"`
	Title     string   `json:"title,omitempty"`
	Message   string   `json:"message"`
}

// TaskQueue decouples side-effect execution from the mutation path.
// Enqueue must not block and must not fail loudly: dropped or failed
// tasks are a delivery problem, never a transaction problem.
type TaskQueue interface {
	Enqueue(t Task)
}

// Dispatcher fans state-changing events out into notifications, the
// bounded activity log and queued external side effects.
type Dispatcher struct {
	store   *Store
	queue   TaskQueue
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewDispatcher wires the fan-out component. metrics may be nil.
func NewDispatcher(store *Store, queue TaskQueue, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, queue: queue, metrics: m, logger: logger}
}

// Notify records the notification (global list plus the owning user's
// embedded list, most-recent-first) and enqueues the local alert task.
// Missing ID, audience and timestamp are filled in.
func (d *Dispatcher) Notify(n domain.Notification) domain.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Audience == "" {
		if n.UserID == "" {
			n.Audience = domain.AudienceAdmin
		} else {
			n.Audience = domain.AudienceUser
		}
	}
	if n.Type == "" {
		n.Type = domain.NotificationInfo
	}

	d.store.PushNotification(n)
	if d.metrics != nil {
		d.metrics.NotificationsTotal.Inc()
	}
	d.queue.Enqueue(Task{
		Kind:      TaskLocalAlert,
		Recipient: n.UserID,
		Title:     n.Title,
		Message:   n.Message,
	})
	return n
}

// SendSMS normalizes the phone number to digits only and enqueues the
// delivery task. Numbers that normalize to nothing are skipped.
func (d *Dispatcher) SendSMS(phoneNumber, message string) {
	normalized := NormalizePhone(phoneNumber)
	if normalized == "" {
		if phoneNumber != "" {
			d.logger.Warn("sms skipped, phone number has no digits", "phone", phoneNumber)
		}
		return
	}
	d.queue.Enqueue(Task{
		Kind:      TaskSMS,
		Recipient: normalized,
		Message:   message,
	})
}

// LogActivity front-inserts into the user's activity log; the store
// evicts entries beyond the most recent ten.
func (d *Dispatcher) LogActivity(userID, description string) {
	d.store.PushActivity(userID, domain.Activity{
		ID:          uuid.NewString(),
		Description: description,
		CreatedAt:   time.Now(),
	})
	if d.metrics != nil {
		d.metrics.ActivitiesTotal.Inc()
	}
}

// NormalizePhone strips everything but digits.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
