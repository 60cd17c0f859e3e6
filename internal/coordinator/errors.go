package coordinator

import (
	"errors"

	"agentcrew/internal/selection"
)

var (
	// ErrInvalidPriority rejects a submission before any state mutates.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrNoSuitableAgent means dispatch found nobody; no ledger entry
	// is created for such a task.
	ErrNoSuitableAgent = selection.ErrNoSuitableAgent

	// ErrTaskNotFound is returned by status lookups for unknown ids.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoCompletedTasks means the aggregation input was empty after
	// filtering to successful history entries.
	ErrNoCompletedTasks = errors.New("no completed tasks to aggregate")

	// ErrAgentNotFound is returned by per-agent queries for unknown names.
	ErrAgentNotFound = errors.New("agent not found")
)
