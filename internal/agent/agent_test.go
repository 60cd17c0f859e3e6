package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"agentcrew/pkg/constants"
	"agentcrew/pkg/knowledge"

	"github.com/stretchr/testify/require"
)

type fakeCompletion struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	statusAt []constants.AgentStatus
	observe  func()
	prompts  []string
}

func (f *fakeCompletion) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, systemPrompt)
	f.mu.Unlock()
	if f.observe != nil {
		f.observe()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestExecuteSuccessResetsStatus(t *testing.T) {
	client := &fakeCompletion{reply: "done"}
	a := New("ada", "engineering", []string{"Architecture"}, client, nil)

	client.observe = func() {
		require.Equal(t, constants.AgentStatusBusy, a.Status())
	}

	require.NoError(t, a.Assign("t1"))
	require.Equal(t, constants.AgentStatusBusy, a.Status())

	result := a.Execute(context.Background(), "t1", "design the system")
	require.True(t, result.Success)
	require.Equal(t, "done", result.Output)
	require.Equal(t, constants.AgentStatusIdle, a.Status())
	require.Equal(t, 0, a.ActiveTasks())
}

func TestExecuteCapturesServiceFailure(t *testing.T) {
	client := &fakeCompletion{err: errors.New("service down")}
	a := New("ada", "engineering", nil, client, nil)

	require.NoError(t, a.Assign("t1"))
	result := a.Execute(context.Background(), "t1", "anything")

	require.False(t, result.Success)
	require.Contains(t, result.Error, "service down")
	// The agent never stays busy after its own execution returns.
	require.Equal(t, constants.AgentStatusIdle, a.Status())
}

func TestExecuteRecordsLocalHistory(t *testing.T) {
	client := &fakeCompletion{reply: "ok"}
	a := New("ada", "engineering", nil, client, nil)

	require.NoError(t, a.Assign("t1"))
	a.Execute(context.Background(), "t1", "first")
	client.err = errors.New("boom")
	require.NoError(t, a.Assign("t2"))
	a.Execute(context.Background(), "t2", "second")

	report := a.Report()
	require.Equal(t, 2, report.TasksHandled)
	require.Equal(t, 1, report.Succeeded)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, "t1", report.Records[0].TaskID)
	require.True(t, report.Records[0].Success)
	require.False(t, report.Records[1].Success)
	require.False(t, report.Records[0].CompletedAt.Before(report.Records[0].AssignedAt))
}

func TestAssignRejectsOfflineAgent(t *testing.T) {
	a := New("ada", "engineering", nil, &fakeCompletion{reply: "ok"}, nil)
	a.Deactivate()
	require.Error(t, a.Assign("t1"))
	require.Equal(t, constants.AgentStatusOffline, a.Status())
}

func TestBusyStatusHeldUntilAllTasksReturn(t *testing.T) {
	client := &fakeCompletion{reply: "ok"}
	a := New("ada", "engineering", nil, client, nil)

	require.NoError(t, a.Assign("t1"))
	require.NoError(t, a.Assign("t2"))
	a.Execute(context.Background(), "t1", "first")
	require.Equal(t, constants.AgentStatusBusy, a.Status())
	a.Execute(context.Background(), "t2", "second")
	require.Equal(t, constants.AgentStatusIdle, a.Status())
}

func TestSystemPromptIncludesKnowledge(t *testing.T) {
	store := knowledge.NewStore(map[string]string{
		"finance/budgeting": "spend less than you earn",
		"marketing/seo":     "rank higher",
	})
	client := &fakeCompletion{reply: "ok"}
	a := New("frank", "finance", []string{"Budgeting"}, client, store)

	require.NoError(t, a.Assign("t1"))
	a.Execute(context.Background(), "t1", "plan the budget")

	require.Len(t, client.prompts, 1)
	require.Contains(t, client.prompts[0], "finance specialist")
	require.Contains(t, client.prompts[0], "spend less than you earn")
	require.False(t, strings.Contains(client.prompts[0], "rank higher"))
}
