package models

import "time"

// JobStatus is the lifecycle state of one pipeline run record.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobRecord tracks one pipeline run. Updates are by id and last-writer-wins;
// readiness never depends on cross-artifact aggregates, so no transactional
// consistency is needed.
type JobRecord struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	Status         JobStatus `json:"status"`
	TotalItems     int       `json:"total_items"`
	CompletedItems int       `json:"completed_items"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Progress returns completion as a fraction in [0,1].
func (j *JobRecord) Progress() float64 {
	if j.TotalItems <= 0 {
		return 0
	}
	f := float64(j.CompletedItems) / float64(j.TotalItems)
	if f > 1 {
		return 1
	}
	return f
}
