package model

import (
	"time"

	"agentcrew/pkg/constants"
)

// Result is the outcome of one task execution. Completion-service
// failures land here as Success=false, they are never propagated as
// errors past the agent boundary.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Task is the authoritative task record owned by the ledger.
// A task lives in exactly one of the active or history sets.
type Task struct {
	ID             string                 `json:"id"`
	Description    string                 `json:"description"`
	Priority       constants.TaskPriority `json:"priority"`
	RequiredSkills []string               `json:"required_skills,omitempty"`
	AgentName      string                 `json:"agent_name"`
	Status         constants.TaskStatus   `json:"status"`
	Progress       int                    `json:"progress"` // 0-100
	SubmittedAt    time.Time              `json:"submitted_at"`
	Deadline       time.Time              `json:"deadline"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	Result         *Result                `json:"result,omitempty"`
}

// PerformanceMetrics is derived from ledger history, recomputed after
// every terminal transition and never stored stale.
type PerformanceMetrics struct {
	TasksAssigned         int           `json:"tasks_assigned"`
	TasksCompleted        int           `json:"tasks_completed"`
	SuccessRate           float64       `json:"success_rate"` // percent of history entries that succeeded
	AverageCompletionTime time.Duration `json:"average_completion_time"`
}

// SubmitRequest submit task request
type SubmitRequest struct {
	Description    string   `json:"description" binding:"required"`
	Priority       string   `json:"priority" binding:"required"`
	RequiredSkills []string `json:"required_skills,omitempty"`
}

// SubmitResponse submit task response
type SubmitResponse struct {
	TaskID  string `json:"task_id"`
	Agent   string `json:"agent"`
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse task status response
type StatusResponse struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Agent       string     `json:"agent"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Deadline    time.Time  `json:"deadline"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Result      *Result    `json:"result,omitempty"`
}

// AggregateRequest multi-task synthesis request
type AggregateRequest struct {
	TaskIDs []string `json:"task_ids" binding:"required"`
	Kind    string   `json:"kind"` // e.g. "summary", defaults to summary
}

// AggregateResponse multi-task synthesis response
type AggregateResponse struct {
	Kind         string   `json:"kind"`
	Content      string   `json:"content"`
	Contributors []string `json:"contributors"` // distinct agent names, first-contribution order
	TaskCount    int      `json:"task_count"`
}

// StatusSnapshot converts a ledger task record into its API shape.
func (t *Task) StatusSnapshot() *StatusResponse {
	return &StatusResponse{
		ID:          t.ID,
		Description: t.Description,
		Priority:    t.Priority.String(),
		Agent:       t.AgentName,
		Status:      t.Status.String(),
		Progress:    t.Progress,
		SubmittedAt: t.SubmittedAt,
		Deadline:    t.Deadline,
		CompletedAt: t.CompletedAt,
		Result:      t.Result,
	}
}
