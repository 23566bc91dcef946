package domain

import (
	"io"
	"math"
)

type TaskID string

type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	// TaskStatusRunning is what the backend queue reports while a worker holds the task.
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

func (s TaskStatus) Pending() bool {
	return !s.Terminal()
}

type AnalysisTask struct {
	ID     TaskID
	Status TaskStatus
	Result *TaskResult
	Error  string
}

type TaskResult struct {
	Label      string
	Confidence float64
	Calories   float64
	Protein    float64
	Carbs      float64
	Fat        float64
}

func (r TaskResult) ConfidencePercent() int {
	confidence := math.Max(0, math.Min(1, r.Confidence))
	return int(math.Round(confidence * 100))
}

// ImageUpload is the binary payload submitted for food analysis.
type ImageUpload struct {
	FileName string
	Content  io.Reader
}
