package constants

import "time"

// Task status constants
type TaskStatus string

const (
	TaskStatusAssigned  TaskStatus = "ASSIGNED"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusFailed    TaskStatus = "FAILED"
)

func (s TaskStatus) String() string {
	return string(s)
}

// Task priority constants
type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityLow    TaskPriority = "low"
)

func (p TaskPriority) String() string {
	return string(p)
}

// Valid reports whether p is one of the three recognized priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow:
		return true
	}
	return false
}

// DeadlineOffset returns the completion window granted to tasks of
// this priority. Deadlines are informational, they never abort an
// in-flight execution.
func (p TaskPriority) DeadlineOffset() time.Duration {
	switch p {
	case TaskPriorityHigh:
		return 2 * time.Hour
	case TaskPriorityLow:
		return 72 * time.Hour
	default:
		return 24 * time.Hour
	}
}
