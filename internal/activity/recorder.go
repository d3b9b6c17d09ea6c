// Package activity is the best-effort audit sink shared by the services.
//
// Writes here must never fail the mutation that triggered them: a lost log
// line is acceptable, a rolled-back borrow is not. Failures are logged and
// swallowed.
package activity

import (
	"log"

	"github.com/openshelf/openshelf/internal/entities"
)

// ActivityLogger appends to the primary store's activity log.
type ActivityLogger interface {
	Log(activity *entities.Activity) error
}

// NotificationWriter appends to the submissions store's notification inbox.
type NotificationWriter interface {
	CreateNotification(n *entities.Notification) error
}

// Recorder fans service side effects out to the activity log and the
// notification inbox.
type Recorder struct {
	activities    ActivityLogger
	notifications NotificationWriter
}

func NewRecorder(activities ActivityLogger, notifications NotificationWriter) *Recorder {
	return &Recorder{
		activities:    activities,
		notifications: notifications,
	}
}

// Activity appends a log entry attributed to userID (nil for system or
// anonymous actions).
func (r *Recorder) Activity(description string, userID *uint) {
	if r == nil || r.activities == nil {
		return
	}
	err := r.activities.Log(&entities.Activity{
		Description: description,
		UserID:      userID,
	})
	if err != nil {
		log.Printf("WARNING: failed to record activity %q: %v", description, err)
	}
}

// Notify appends an inbox entry of the given type, optionally linked to the
// entity that caused it.
func (r *Recorder) Notify(notificationType, message string, relatedID *uint) {
	if r == nil || r.notifications == nil {
		return
	}
	err := r.notifications.CreateNotification(&entities.Notification{
		Type:      notificationType,
		Message:   message,
		RelatedID: relatedID,
	})
	if err != nil {
		log.Printf("WARNING: failed to record %s notification: %v", notificationType, err)
	}
}
