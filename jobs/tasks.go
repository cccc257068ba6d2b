package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSchemaRefresh re-fetches series schemas and prunes stale
	// favorite-field entries.
	TaskSchemaRefresh = "schema:refresh"
)

// SchemaRefreshPayload narrows a refresh to one series; zero means all.
type SchemaRefreshPayload struct {
	SeriesID int64 `json:"series_id"`
}

// NewSchemaRefreshTask constructs an Asynq task.
func NewSchemaRefreshTask(payload SchemaRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSchemaRefresh, data), nil
}
