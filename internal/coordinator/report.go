package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agentcrew/internal/model"
	"agentcrew/pkg/logger"
)

const defaultAggregateKind = "summary"

// Aggregate synthesizes the given kind of report across the
// successful history entries among taskIDs. No completion call is
// made when the filtered set is empty.
func (c *Coordinator) Aggregate(ctx context.Context, req *model.AggregateRequest) (*model.AggregateResponse, error) {
	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = defaultAggregateKind
	}

	completed := c.ledger.CompletedAmong(req.TaskIDs)
	if len(completed) == 0 {
		return nil, ErrNoCompletedTasks
	}

	contributors := make([]string, 0, len(completed))
	seen := make(map[string]bool)
	var b strings.Builder
	for i, task := range completed {
		role := "specialist"
		if a, ok := c.registry.Get(task.AgentName); ok {
			role = a.Role()
		}
		if !seen[task.AgentName] {
			seen[task.AgentName] = true
			contributors = append(contributors, task.AgentName)
		}
		fmt.Fprintf(&b, "Input %d — %s (%s)\nTask: %s\nFindings:\n%s\n\n",
			i+1, task.AgentName, role, task.Description, task.Result.Output)
	}

	systemPrompt := fmt.Sprintf(
		"You are the coordinator of a team of domain specialists. "+
			"Synthesize one %s across the findings below, reconciling overlaps and contradictions.", kind)

	content, err := c.completion.Complete(ctx, systemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}

	ids := make([]string, 0, len(completed))
	for _, task := range completed {
		ids = append(ids, task.ID)
	}
	c.saveReport(kind, ids, contributors, content)

	return &model.AggregateResponse{
		Kind:         kind,
		Content:      content,
		Contributors: contributors,
		TaskCount:    len(completed),
	}, nil
}

// TeamReport snapshots registry statuses and ledger metrics and asks
// the completion service for narrative insights. It never fails
// outright: a narrative error degrades the insights only, the
// structured statistics are always returned.
func (c *Coordinator) TeamReport(ctx context.Context) *model.TeamReport {
	active, history := c.ledger.Counts()
	report := &model.TeamReport{
		GeneratedAt:  time.Now(),
		Agents:       c.registry.Snapshots(),
		Metrics:      c.ledger.Metrics(),
		ActiveTasks:  active,
		HistoryTasks: history,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Team of %d agents. Tasks assigned: %d, completed: %d, success rate: %.1f%%, avg completion: %v.\n",
		len(report.Agents), report.Metrics.TasksAssigned, report.Metrics.TasksCompleted,
		report.Metrics.SuccessRate, report.Metrics.AverageCompletionTime.Round(time.Millisecond))
	for _, a := range report.Agents {
		fmt.Fprintf(&b, "- %s (%s): %s, active tasks: %d\n", a.Name, a.Role, a.Status, a.ActiveTasks)
	}

	insights, err := c.completion.Complete(ctx,
		"You review the operational statistics of a team of specialist agents and point out load imbalances, failure patterns and next actions in a short paragraph.",
		b.String())
	if err != nil {
		logger.WarnCtx(ctx, "team report narrative degraded: %v", err)
		report.InsightsDegraded = true
	} else {
		report.Insights = insights
		c.saveReport("team", nil, nil, insights)
	}

	return report
}

// AgentReport returns the task history digest of one agent.
func (c *Coordinator) AgentReport(name string) (*model.AgentReport, error) {
	a, ok := c.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	report := a.Report()
	return &report, nil
}
