package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"agentcrew/internal/model"
	"agentcrew/pkg/completion"
	"agentcrew/pkg/constants"
	"agentcrew/pkg/knowledge"
	"agentcrew/pkg/logger"
)

const maxKnowledgeDocs = 3
const maxKnowledgeExcerpt = 1200

// Agent is a capability-tagged executor bound to a role and skill set.
// It is created once at startup and lives for the process lifetime;
// deactivation (OFFLINE) is the only way out of rotation.
type Agent struct {
	name       string
	role       string
	skills     []string
	completion completion.Client
	knowledge  *knowledge.Store

	mu      sync.Mutex
	status  constants.AgentStatus
	active  map[string]time.Time // task id -> assignment time
	records []model.ExecutionRecord
}

// New creates an idle agent.
func New(name, role string, skills []string, client completion.Client, store *knowledge.Store) *Agent {
	return &Agent{
		name:       name,
		role:       role,
		skills:     append([]string(nil), skills...),
		completion: client,
		knowledge:  store,
		status:     constants.AgentStatusIdle,
		active:     make(map[string]time.Time),
	}
}

func (a *Agent) Name() string { return a.name }
func (a *Agent) Role() string { return a.role }

// Skills returns a copy of the agent's skill tags.
func (a *Agent) Skills() []string {
	return append([]string(nil), a.skills...)
}

// Status returns the current availability.
func (a *Agent) Status() constants.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// ActiveTasks returns the number of in-flight assignments.
func (a *Agent) ActiveTasks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.active)
}

// Snapshot returns a point-in-time view of the agent.
func (a *Agent) Snapshot() model.AgentSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return model.AgentSnapshot{
		Name:        a.name,
		Role:        a.role,
		Skills:      append([]string(nil), a.skills...),
		Status:      a.status,
		ActiveTasks: len(a.active),
	}
}

// Deactivate takes the agent out of rotation.
func (a *Agent) Deactivate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = constants.AgentStatusOffline
}

// Assign records an in-flight task and flips the agent to BUSY.
// Callers hold the coordinator's dispatch lock, so two concurrent
// submits can never both observe this agent as idle.
func (a *Agent) Assign(taskID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == constants.AgentStatusOffline {
		return fmt.Errorf("agent %s is offline", a.name)
	}
	a.active[taskID] = time.Now()
	a.status = constants.AgentStatusBusy
	return nil
}

// Execute runs one task against the completion service and returns its
// result. It never returns an error: service failures are captured in
// the result so the caller can always finalize lifecycle state. On
// return the task is cleared and the agent is IDLE again unless other
// assignments are still in flight.
func (a *Agent) Execute(ctx context.Context, taskID, description string) model.Result {
	a.ensureAssigned(taskID)

	text, err := a.completion.Complete(ctx, a.systemPrompt(), a.userPrompt(taskID, description))

	var result model.Result
	if err != nil {
		logger.ErrorCtx(ctx, "agent execution failed, agent: %s, task_id: %s, error: %v", a.name, taskID, err)
		result = model.Result{Success: false, Error: err.Error()}
	} else {
		result = model.Result{Success: true, Output: text}
	}

	a.finish(taskID, description, result)
	return result
}

// ensureAssigned registers the task if the caller skipped Assign, so
// the busy flip always precedes the completion call.
func (a *Agent) ensureAssigned(taskID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.active[taskID]; !ok {
		a.active[taskID] = time.Now()
	}
	if a.status != constants.AgentStatusOffline {
		a.status = constants.AgentStatusBusy
	}
}

func (a *Agent) finish(taskID, description string, result model.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	assignedAt, ok := a.active[taskID]
	if !ok {
		assignedAt = time.Now()
	}
	delete(a.active, taskID)

	a.records = append(a.records, model.ExecutionRecord{
		TaskID:      taskID,
		Description: description,
		AssignedAt:  assignedAt,
		CompletedAt: time.Now(),
		Success:     result.Success,
		Error:       result.Error,
	})

	if len(a.active) == 0 && a.status != constants.AgentStatusOffline {
		a.status = constants.AgentStatusIdle
	}
}

// Report returns the per-agent history digest.
func (a *Agent) Report() model.AgentReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	report := model.AgentReport{
		Name:         a.name,
		Role:         a.role,
		Status:       a.status,
		TasksHandled: len(a.records),
		Records:      append([]model.ExecutionRecord(nil), a.records...),
	}
	for _, rec := range a.records {
		if rec.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	return report
}

func (a *Agent) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the team's %s specialist.", a.name, a.role)
	if len(a.skills) > 0 {
		fmt.Fprintf(&b, " Core skills: %s.", strings.Join(a.skills, ", "))
	}
	b.WriteString(" Produce a focused, actionable analysis for the task you are given.")

	if a.knowledge != nil {
		tags := append([]string{a.role}, a.skills...)
		for _, doc := range a.knowledge.Match(tags, maxKnowledgeDocs) {
			excerpt := doc.Content
			if len(excerpt) > maxKnowledgeExcerpt {
				excerpt = excerpt[:maxKnowledgeExcerpt]
			}
			fmt.Fprintf(&b, "\n\nReference (%s):\n%s", doc.Key, excerpt)
		}
	}
	return b.String()
}

func (a *Agent) userPrompt(taskID, description string) string {
	return fmt.Sprintf("Task %s: %s", taskID, description)
}
