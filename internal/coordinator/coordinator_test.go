package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agentcrew/internal/agent"
	"agentcrew/internal/model"
	"agentcrew/internal/registry"
	"agentcrew/pkg/constants"

	"github.com/stretchr/testify/require"
)

// fakeCompletion is a scriptable completion client shared by the
// coordinator and its agents in tests.
type fakeCompletion struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	release chan struct{} // when set, Complete blocks until closed or ctx ends
}

func (f *fakeCompletion) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	reply, err := f.reply, f.err
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (f *fakeCompletion) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingSink struct {
	mu       sync.Mutex
	reports  []string
	archives []string
}

func (s *recordingSink) SaveReport(ctx context.Context, kind string, taskIDs, contributors []string, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, kind)
}

func (s *recordingSink) ArchiveTask(ctx context.Context, task *model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives = append(s.archives, task.ID)
}

func newCoordinator(client *fakeCompletion, agents ...*agent.Agent) (*Coordinator, *registry.Registry) {
	reg := registry.New()
	for _, a := range agents {
		if err := reg.Register(a); err != nil {
			panic(err)
		}
	}
	return New(reg, client), reg
}

func TestSubmitHappyPath(t *testing.T) {
	client := &fakeCompletion{reply: "budget analysis"}
	frank := agent.New("frank", "finance", []string{"Budgeting"}, client, nil)
	c, _ := newCoordinator(client, frank)

	sink := &recordingSink{}
	c.SetSink(sink)

	resp, err := c.Submit(context.Background(), &model.SubmitRequest{
		Description: "review the quarterly budget",
		Priority:    "high",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "frank", resp.Agent)
	require.Equal(t, "budget analysis", resp.Output)
	require.NotEmpty(t, resp.TaskID)

	// The id is retrievable immediately and forever after.
	status, err := c.Status(resp.TaskID)
	require.NoError(t, err)
	require.Equal(t, constants.TaskStatusCompleted.String(), status.Status)
	require.Equal(t, "frank", status.Agent)
	require.NotNil(t, status.CompletedAt)

	// The agent is idle again after its execution returned.
	require.Equal(t, constants.AgentStatusIdle, frank.Status())

	c.Drain()
	require.Equal(t, []string{resp.TaskID}, sink.archives)
}

func TestSubmitServiceFailureFinalizesFailed(t *testing.T) {
	client := &fakeCompletion{err: errors.New("completion unavailable")}
	ada := agent.New("ada", "engineering", nil, client, nil)
	c, _ := newCoordinator(client, ada)

	resp, err := c.Submit(context.Background(), &model.SubmitRequest{
		Description: "anything",
		Priority:    "medium",
	})
	require.NoError(t, err) // submit returns a structured outcome, it never throws
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "completion unavailable")

	status, err := c.Status(resp.TaskID)
	require.NoError(t, err)
	require.Equal(t, constants.TaskStatusFailed.String(), status.Status)
	require.Equal(t, constants.AgentStatusIdle, ada.Status())
}

func TestSubmitRejectsInvalidPriority(t *testing.T) {
	client := &fakeCompletion{reply: "ok"}
	c, _ := newCoordinator(client, agent.New("ada", "engineering", nil, client, nil))

	_, err := c.Submit(context.Background(), &model.SubmitRequest{
		Description: "anything",
		Priority:    "urgent",
	})
	require.ErrorIs(t, err, ErrInvalidPriority)

	// Rejected before any state mutation: the ledger is untouched.
	m := c.Metrics()
	require.Equal(t, 0, m.TasksAssigned)
}

func TestSubmitNoAgentAvailableCreatesNoLedgerEntry(t *testing.T) {
	client := &fakeCompletion{reply: "ok"}
	c, _ := newCoordinator(client) // empty registry

	_, err := c.Submit(context.Background(), &model.SubmitRequest{
		Description: "anything",
		Priority:    "low",
	})
	require.ErrorIs(t, err, ErrNoSuitableAgent)
	require.Equal(t, 0, c.Metrics().TasksAssigned)
}

func TestConcurrentSubmitsNeverDoubleAssignIdleAgent(t *testing.T) {
	client := &fakeCompletion{reply: "ok", release: make(chan struct{})}
	busy := agent.New("busy", "finance", nil, client, nil)
	idle := agent.New("idle", "research", nil, client, nil)
	c, _ := newCoordinator(client, busy, idle)

	require.NoError(t, busy.Assign("warm-up"))

	var wg sync.WaitGroup
	responses := make(chan *model.SubmitResponse, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Submit(context.Background(), &model.SubmitRequest{
				Description: "concurrent work",
				Priority:    "medium",
			})
			require.NoError(t, err)
			responses <- resp
		}()
	}

	// Wait until both submits are inside their completion calls.
	require.Eventually(t, func() bool {
		return client.callCount() == 2
	}, time.Second, 5*time.Millisecond)

	// Exactly one call acquired the idle agent; the other fell back to
	// least-busy and landed on the already busy one.
	require.Equal(t, 1, idle.ActiveTasks())
	require.Equal(t, 2, busy.ActiveTasks()) // warm-up plus the fallback task

	close(client.release)
	wg.Wait()
	close(responses)

	agents := map[string]int{}
	for resp := range responses {
		agents[resp.Agent]++
	}
	require.Equal(t, map[string]int{"idle": 1, "busy": 1}, agents)
	require.Equal(t, constants.AgentStatusIdle, idle.Status())
}

func TestSubmitTimeoutReleasesAgent(t *testing.T) {
	client := &fakeCompletion{reply: "ok", release: make(chan struct{})} // never released
	ada := agent.New("ada", "engineering", nil, client, nil)
	c, _ := newCoordinator(client, ada)
	c.SetExecutionTimeout(30 * time.Millisecond)

	resp, err := c.Submit(context.Background(), &model.SubmitRequest{
		Description: "slow work",
		Priority:    "high",
	})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "timed out")

	status, err := c.Status(resp.TaskID)
	require.NoError(t, err)
	require.Equal(t, constants.TaskStatusFailed.String(), status.Status)
	require.Equal(t, constants.AgentStatusIdle, ada.Status())
}

func TestStatusUnknownTask(t *testing.T) {
	client := &fakeCompletion{reply: "ok"}
	c, _ := newCoordinator(client, agent.New("ada", "engineering", nil, client, nil))
	_, err := c.Status("task-unknown")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAggregateSynthesizesAcrossCompletedTasks(t *testing.T) {
	client := &fakeCompletion{reply: "finding"}
	frank := agent.New("frank", "finance", []string{"Budgeting"}, client, nil)
	maya := agent.New("maya", "marketing", []string{"SEO"}, client, nil)
	c, _ := newCoordinator(client, frank, maya)

	sink := &recordingSink{}
	c.SetSink(sink)

	r1, err := c.Submit(context.Background(), &model.SubmitRequest{Description: "budget costs", Priority: "high"})
	require.NoError(t, err)
	r2, err := c.Submit(context.Background(), &model.SubmitRequest{Description: "seo keyword plan", Priority: "medium"})
	require.NoError(t, err)

	client.mu.Lock()
	client.reply = "combined summary"
	client.mu.Unlock()

	resp, err := c.Aggregate(context.Background(), &model.AggregateRequest{
		TaskIDs: []string{r1.TaskID, r2.TaskID},
		Kind:    "summary",
	})
	require.NoError(t, err)
	require.Equal(t, "combined summary", resp.Content)
	require.Equal(t, 2, resp.TaskCount)
	require.ElementsMatch(t, []string{"frank", "maya"}, resp.Contributors)

	c.Drain()
	require.Contains(t, sink.reports, "summary")
}

func TestAggregateWithNoCompletedTasksMakesNoServiceCall(t *testing.T) {
	client := &fakeCompletion{err: errors.New("always fails")}
	ada := agent.New("ada", "engineering", nil, client, nil)
	c, _ := newCoordinator(client, ada)

	resp, err := c.Submit(context.Background(), &model.SubmitRequest{Description: "doomed", Priority: "low"})
	require.NoError(t, err)
	require.False(t, resp.Success)

	callsBefore := client.callCount()
	_, err = c.Aggregate(context.Background(), &model.AggregateRequest{
		TaskIDs: []string{resp.TaskID, "task-unknown"},
	})
	require.ErrorIs(t, err, ErrNoCompletedTasks)
	require.Equal(t, callsBefore, client.callCount())
}

func TestTeamReportDegradesWhenNarrativeFails(t *testing.T) {
	client := &fakeCompletion{reply: "ok"}
	ada := agent.New("ada", "engineering", nil, client, nil)
	c, _ := newCoordinator(client, ada)

	_, err := c.Submit(context.Background(), &model.SubmitRequest{Description: "w", Priority: "medium"})
	require.NoError(t, err)

	client.mu.Lock()
	client.err = errors.New("narrative down")
	client.mu.Unlock()

	report := c.TeamReport(context.Background())
	require.True(t, report.InsightsDegraded)
	require.Empty(t, report.Insights)
	// Structured statistics survive the degraded narrative.
	require.Len(t, report.Agents, 1)
	require.Equal(t, 1, report.Metrics.TasksAssigned)
	require.Equal(t, 1, report.HistoryTasks)
}

func TestTeamReportIncludesNarrative(t *testing.T) {
	client := &fakeCompletion{reply: "all healthy"}
	c, _ := newCoordinator(client, agent.New("ada", "engineering", nil, client, nil))

	report := c.TeamReport(context.Background())
	require.False(t, report.InsightsDegraded)
	require.Equal(t, "all healthy", report.Insights)
}

func TestAgentReport(t *testing.T) {
	client := &fakeCompletion{reply: "ok"}
	ada := agent.New("ada", "engineering", nil, client, nil)
	c, _ := newCoordinator(client, ada)

	resp, err := c.Submit(context.Background(), &model.SubmitRequest{Description: "w", Priority: "high"})
	require.NoError(t, err)

	report, err := c.AgentReport("ada")
	require.NoError(t, err)
	require.Equal(t, 1, report.TasksHandled)
	require.Equal(t, resp.TaskID, report.Records[0].TaskID)

	_, err = c.AgentReport("ghost")
	require.ErrorIs(t, err, ErrAgentNotFound)
}

func TestSystemHealthScore(t *testing.T) {
	client := &fakeCompletion{reply: "ok"}
	agents := []*agent.Agent{
		agent.New("a", "finance", nil, client, nil),
		agent.New("b", "marketing", nil, client, nil),
		agent.New("c", "engineering", nil, client, nil),
		agent.New("d", "research", nil, client, nil),
	}
	c, _ := newCoordinator(client, agents...)

	// Build an 80% success rate: four successes, one failure.
	for i := 0; i < 4; i++ {
		_, err := c.Submit(context.Background(), &model.SubmitRequest{Description: "w", Priority: "medium"})
		require.NoError(t, err)
	}
	client.mu.Lock()
	client.err = errors.New("boom")
	client.mu.Unlock()
	_, err := c.Submit(context.Background(), &model.SubmitRequest{Description: "w", Priority: "medium"})
	require.NoError(t, err)

	// Hold two of the four agents busy.
	require.NoError(t, agents[0].Assign("hold-1"))
	require.NoError(t, agents[1].Assign("hold-2"))

	health := c.SystemHealth()
	require.Equal(t, 2, health.IdleAgents)
	require.Equal(t, 4, health.TotalAgents)
	require.InDelta(t, 80.0, health.SuccessRate, 0.001)
	// 50 x (2/4) + min(80/2, 50) = 25 + 40
	require.Equal(t, 65, health.Score)
}

func TestSystemHealthEmptyRegistry(t *testing.T) {
	client := &fakeCompletion{reply: "ok"}
	c, _ := newCoordinator(client)
	health := c.SystemHealth()
	require.Equal(t, 0, health.Score)
	require.Equal(t, 0, health.TotalAgents)
}
