package domain

import "time"

// NotificationType selects the toast/badge styling in consumers.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Audience routes a notification to applicant-facing or admin-facing
// surfaces.
type Audience string

const (
	AudienceUser  Audience = "user"
	AudienceAdmin Audience = "admin"
)

// Notification is an append-only, user-scoped side-effect record. Admin
// notifications carry no user ID and live only in the global list.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId,omitempty"`
	Audience  Audience         `json:"audience"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// MaxActivitiesPerUser caps each user's activity log; the oldest entries
// are evicted first.
const MaxActivitiesPerUser = 10

// Activity is one entry of a user's bounded, most-recent-first activity
// log.
type Activity struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
