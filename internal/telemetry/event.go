// Package telemetry keeps a lightweight log of mutations for usage
// stats. It observes the dispatcher; nothing reads it on the hot path.
package telemetry

import "time"

type EventType string

const (
	EventTaskCreated    EventType = "task_created"
	EventTaskRenamed    EventType = "task_renamed"
	EventTaskCompleted  EventType = "task_completed"
	EventTaskReopened   EventType = "task_reopened"
	EventTaskScheduled  EventType = "task_scheduled"
	EventTaskDeferred   EventType = "task_deferred"
	EventTaskAssigned   EventType = "task_assigned"
	EventTaskUnassigned EventType = "task_unassigned"
	EventTaskDeleted    EventType = "task_deleted"
	EventBucketCreated  EventType = "bucket_created"
	EventBucketRenamed  EventType = "bucket_renamed"
	EventBucketDeleted  EventType = "bucket_deleted"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
