package core

import "context"

// Broadcast event types.
const (
	EventPlanPublished = "PLAN_PUBLISHED"
	EventDataUpdate    = "DATA_UPDATE"
)

// Broadcaster pushes a notification onto a logically scoped channel.
// Delivery is asynchronous and at-most-once: consumers must treat events as
// cache-invalidation hints and re-fetch authoritative state. A failed publish
// must never fail the surrounding request; callers log and move on.
type Broadcaster interface {
	Publish(ctx context.Context, channel, eventType string, payload interface{}) error
}

// TeacherChannel returns the channel scoped to a single teacher.
func TeacherChannel(teacherID string) string {
	return "teacher:" + teacherID
}

// StudentChannel returns the channel scoped to a single student.
func StudentChannel(studentID string) string {
	return "student:" + studentID
}
