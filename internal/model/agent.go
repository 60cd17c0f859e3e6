package model

import (
	"time"

	"agentcrew/pkg/constants"
)

// AgentSnapshot is a point-in-time view of one agent, safe to hand to
// callers without exposing mutable state.
type AgentSnapshot struct {
	Name        string                `json:"name"`
	Role        string                `json:"role"`
	Skills      []string              `json:"skills"`
	Status      constants.AgentStatus `json:"status"`
	ActiveTasks int                   `json:"active_tasks"`
}

// ExecutionRecord is an agent-local bookkeeping entry for one handled
// task. The ledger stays authoritative; these records only feed the
// per-agent report digest.
type ExecutionRecord struct {
	TaskID      string    `json:"task_id"`
	Description string    `json:"description"`
	AssignedAt  time.Time `json:"assigned_at"`
	CompletedAt time.Time `json:"completed_at"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
}

// AgentReport per-agent task history digest
type AgentReport struct {
	Name         string                `json:"name"`
	Role         string                `json:"role"`
	Status       constants.AgentStatus `json:"status"`
	TasksHandled int                   `json:"tasks_handled"`
	Succeeded    int                   `json:"succeeded"`
	Failed       int                   `json:"failed"`
	Records      []ExecutionRecord     `json:"records"`
}

// TeamReport statistics plus narrative insights
type TeamReport struct {
	GeneratedAt      time.Time          `json:"generated_at"`
	Agents           []AgentSnapshot    `json:"agents"`
	Metrics          PerformanceMetrics `json:"metrics"`
	ActiveTasks      int                `json:"active_tasks"`
	HistoryTasks     int                `json:"history_tasks"`
	Insights         string             `json:"insights,omitempty"`
	InsightsDegraded bool               `json:"insights_degraded,omitempty"`
}

// HealthResponse bounded 0-100 system health score
type HealthResponse struct {
	Score       int     `json:"score"`
	IdleAgents  int     `json:"idle_agents"`
	TotalAgents int     `json:"total_agents"`
	SuccessRate float64 `json:"success_rate"`
}
