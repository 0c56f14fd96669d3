package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period          string            `json:"period"`
	EventCounts     map[EventType]int `json:"event_counts"`
	TaskCreations   int               `json:"task_creations"`
	TaskCompletions int               `json:"task_completions"`
	TasksScheduled  int               `json:"tasks_scheduled"`
	TasksDeferred   int               `json:"tasks_deferred"`
	MovesPerTask    float64           `json:"moves_per_task"`
	BucketsByName   map[string]int    `json:"buckets_by_name"`
}

// CalculateStats folds the event log into usage aggregates, the raw
// material for answering "how much planning versus doing".
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:        since.Format("2006-01-02"),
		EventCounts:   make(map[EventType]int),
		BucketsByName: make(map[string]int),
	}

	moves := 0
	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTaskCreated:
			stats.TaskCreations++
		case EventTaskCompleted:
			stats.TaskCompletions++
		case EventTaskScheduled:
			stats.TasksScheduled++
			moves++
		case EventTaskDeferred:
			stats.TasksDeferred++
			moves++
		case EventTaskAssigned, EventTaskUnassigned:
			moves++
		case EventBucketCreated:
			if name, ok := metadata["name"].(string); ok {
				stats.BucketsByName[name]++
			}
		}
	}

	if stats.TaskCreations > 0 {
		stats.MovesPerTask = float64(moves) / float64(stats.TaskCreations)
	}

	return stats, nil
}
