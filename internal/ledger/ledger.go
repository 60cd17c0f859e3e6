package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"agentcrew/internal/model"
	"agentcrew/pkg/constants"

	"github.com/google/uuid"
)

// ErrUnknownTask is returned when a task id is not in the active set.
var ErrUnknownTask = errors.New("unknown task")

// Ledger is the authoritative store of task records. Every task lives
// in exactly one of the active or history sets; Finalize moves it
// between them atomically with the terminal-state write.
type Ledger struct {
	mu            sync.RWMutex
	active        map[string]*model.Task
	history       map[string]*model.Task
	historyOrder  []string
	tasksAssigned int
	metrics       model.PerformanceMetrics
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		active:  make(map[string]*model.Task),
		history: make(map[string]*model.Task),
	}
}

// CreateAndAssign allocates an id, inserts the task into the active
// set with status ASSIGNED, and counts the assignment.
func (l *Ledger) CreateAndAssign(description string, priority constants.TaskPriority, requiredSkills []string, agentName string) *model.Task {
	now := time.Now()
	task := &model.Task{
		ID:             newTaskID(now),
		Description:    description,
		Priority:       priority,
		RequiredSkills: append([]string(nil), requiredSkills...),
		AgentName:      agentName,
		Status:         constants.TaskStatusAssigned,
		SubmittedAt:    now,
		Deadline:       now.Add(priority.DeadlineOffset()),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.active[task.ID] = task
	l.tasksAssigned++
	l.metrics.TasksAssigned = l.tasksAssigned
	return cloneTask(task)
}

// Finalize writes the terminal state and moves the record from active
// to history in one critical section, then recomputes metrics. There
// is no observable moment where the task is absent from both sets.
func (l *Ledger) Finalize(taskID string, result model.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	task, ok := l.active[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}

	now := time.Now()
	task.CompletedAt = &now
	task.Result = &result
	if result.Success {
		task.Status = constants.TaskStatusCompleted
		task.Progress = 100
	} else {
		task.Status = constants.TaskStatusFailed
	}

	delete(l.active, taskID)
	l.history[taskID] = task
	l.historyOrder = append(l.historyOrder, taskID)

	l.recomputeMetrics()
	return nil
}

// Status returns a task snapshot, checking the active set first and
// then history. Lookups stay valid forever once a task exists.
func (l *Ledger) Status(taskID string) (*model.Task, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if task, ok := l.active[taskID]; ok {
		return cloneTask(task), true
	}
	if task, ok := l.history[taskID]; ok {
		return cloneTask(task), true
	}
	return nil, false
}

// Metrics returns the current performance snapshot, derived purely
// from history.
func (l *Ledger) Metrics() model.PerformanceMetrics {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.metrics
}

// CompletedAmong returns the history entries among ids whose result
// succeeded, in finalization order.
func (l *Ledger) CompletedAmong(ids []string) []*model.Task {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*model.Task
	for _, id := range l.historyOrder {
		if !wanted[id] {
			continue
		}
		task := l.history[id]
		if task.Result != nil && task.Result.Success {
			out = append(out, cloneTask(task))
		}
	}
	return out
}

// Counts returns the sizes of the active and history sets.
func (l *Ledger) Counts() (active, history int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.active), len(l.history)
}

// recomputeMetrics is called under the write lock after every
// terminal transition; metrics are never stored stale.
func (l *Ledger) recomputeMetrics() {
	completed := 0
	var totalDuration time.Duration
	for _, task := range l.history {
		if task.Status == constants.TaskStatusCompleted {
			completed++
			if task.CompletedAt != nil {
				totalDuration += task.CompletedAt.Sub(task.SubmittedAt)
			}
		}
	}

	l.metrics.TasksAssigned = l.tasksAssigned
	l.metrics.TasksCompleted = completed
	if len(l.history) > 0 {
		l.metrics.SuccessRate = float64(completed) / float64(len(l.history)) * 100
	} else {
		l.metrics.SuccessRate = 0
	}
	if completed > 0 {
		l.metrics.AverageCompletionTime = totalDuration / time.Duration(completed)
	} else {
		l.metrics.AverageCompletionTime = 0
	}
}

// newTaskID builds a time-based id with a random suffix so concurrent
// submissions in the same millisecond cannot collide.
func newTaskID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("task-%d-%s", now.UnixMilli(), suffix)
}

func cloneTask(t *model.Task) *model.Task {
	c := *t
	c.RequiredSkills = append([]string(nil), t.RequiredSkills...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.Result != nil {
		res := *t.Result
		c.Result = &res
	}
	return &c
}
