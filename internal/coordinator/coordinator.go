package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agentcrew/internal/ledger"
	"agentcrew/internal/model"
	"agentcrew/internal/registry"
	"agentcrew/internal/selection"
	"agentcrew/pkg/constants"
	"agentcrew/pkg/logger"
)

// Coordinator composes the registry, selection policy and ledger into
// the orchestration entry point: it dispatches tasks, tracks their
// lifecycle and answers aggregation and report queries.
type Coordinator struct {
	registry   *registry.Registry
	policy     *selection.Policy
	ledger     *ledger.Ledger
	completion completionClient
	sink       Sink
	timeout    time.Duration

	// dispatchMu serializes selection together with the idle->busy
	// flip, so two concurrent submits never both claim the same idle
	// agent.
	dispatchMu sync.Mutex
	wg         sync.WaitGroup
}

// completionClient mirrors completion.Client without importing it, so
// tests can swap in fakes freely.
type completionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// New creates a coordinator over the given registry.
func New(reg *registry.Registry, client completionClient) *Coordinator {
	return &Coordinator{
		registry:   reg,
		policy:     selection.New(reg),
		ledger:     ledger.New(),
		completion: client,
	}
}

// SetSink installs the durable report sink (optional).
func (c *Coordinator) SetSink(sink Sink) {
	c.sink = sink
}

// SetExecutionTimeout bounds each completion call made on behalf of a
// task. On expiry the task finalizes as failed and the agent is
// released instead of staying busy behind a hung call.
func (c *Coordinator) SetExecutionTimeout(d time.Duration) {
	c.timeout = d
}

// Submit runs the full synchronous chain: validate, select, record,
// execute, finalize. The returned response always carries an outcome;
// the error is non-nil only for rejections that create no ledger
// entry (invalid priority, no agent available).
func (c *Coordinator) Submit(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResponse, error) {
	priority := constants.TaskPriority(req.Priority)
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, req.Priority)
	}

	c.dispatchMu.Lock()
	selected, err := c.policy.SelectBestAgent(req.RequiredSkills, req.Description)
	if err != nil {
		c.dispatchMu.Unlock()
		return nil, err
	}
	task := c.ledger.CreateAndAssign(req.Description, priority, req.RequiredSkills, selected.Name())
	assignErr := selected.Assign(task.ID)
	c.dispatchMu.Unlock()

	logger.InfoCtx(ctx, "task dispatched, task_id: %s, agent: %s, priority: %s", task.ID, selected.Name(), priority)

	var result model.Result
	if assignErr != nil {
		// The agent went offline between selection and assignment.
		result = model.Result{Success: false, Error: assignErr.Error()}
	} else {
		execCtx := ctx
		var cancel context.CancelFunc
		if c.timeout > 0 {
			execCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		result = selected.Execute(execCtx, task.ID, req.Description)
		if !result.Success && execCtx.Err() == context.DeadlineExceeded {
			result.Error = fmt.Sprintf("execution timed out after %v", c.timeout)
		}
	}

	if err := c.ledger.Finalize(task.ID, result); err != nil {
		logger.ErrorCtx(ctx, "failed to finalize task %s: %v", task.ID, err)
	}

	if finalized, ok := c.ledger.Status(task.ID); ok {
		c.archive(finalized)
	}

	return &model.SubmitResponse{
		TaskID:  task.ID,
		Agent:   selected.Name(),
		Success: result.Success,
		Output:  result.Output,
		Error:   result.Error,
	}, nil
}

// Status returns the lifecycle snapshot for a task id.
func (c *Coordinator) Status(taskID string) (*model.StatusResponse, error) {
	task, ok := c.ledger.Status(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return task.StatusSnapshot(), nil
}

// ListAgents returns a status snapshot per registered agent.
func (c *Coordinator) ListAgents() []model.AgentSnapshot {
	return c.registry.Snapshots()
}

// Metrics returns the current ledger performance snapshot.
func (c *Coordinator) Metrics() model.PerformanceMetrics {
	return c.ledger.Metrics()
}

// SystemHealth scores the system 0-100 from the current registry and
// metrics snapshots: 50 x (idle/total) + min(successRate/2, 50),
// rounded to the nearest integer. Recomputed on demand, never cached.
func (c *Coordinator) SystemHealth() model.HealthResponse {
	snapshots := c.registry.Snapshots()
	idle := 0
	for _, s := range snapshots {
		if s.Status == constants.AgentStatusIdle {
			idle++
		}
	}

	metrics := c.ledger.Metrics()
	score := 0.0
	if len(snapshots) > 0 {
		score = 50 * float64(idle) / float64(len(snapshots))
	}
	rateComponent := metrics.SuccessRate / 2
	if rateComponent > 50 {
		rateComponent = 50
	}
	score += rateComponent

	return model.HealthResponse{
		Score:       int(score + 0.5),
		IdleAgents:  idle,
		TotalAgents: len(snapshots),
		SuccessRate: metrics.SuccessRate,
	}
}

// archive hands a finalized task to the sink off the request path.
func (c *Coordinator) archive(task *model.Task) {
	if c.sink == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.sink.ArchiveTask(context.Background(), task)
	}()
}

// saveReport hands a synthesis report to the sink off the request path.
func (c *Coordinator) saveReport(kind string, taskIDs, contributors []string, content string) {
	if c.sink == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.sink.SaveReport(context.Background(), kind, taskIDs, contributors, content)
	}()
}

// Drain waits for in-flight sink writes, used on shutdown and in tests.
func (c *Coordinator) Drain() {
	c.wg.Wait()
}
