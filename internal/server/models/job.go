package models

import "time"

// JobStatus is the state of a thumbnail job.
// Transitions: queued -> running -> completed | failed.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ThumbnailJob asks the pipeline to derive resized variants of an image.
type ThumbnailJob struct {
	ID         int64
	UserID     string
	FileID     string
	Sizes      []int
	Status     JobStatus
	Error      string
	CreatedAt  time.Time
	FinishedAt *time.Time
}
