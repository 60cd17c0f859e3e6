package constants

// Agent availability constants
type AgentStatus string

const (
	AgentStatusIdle    AgentStatus = "IDLE"    // Available for assignment
	AgentStatusBusy    AgentStatus = "BUSY"    // Processing a task
	AgentStatusOffline AgentStatus = "OFFLINE" // Deactivated, never selected
)

func (s AgentStatus) String() string {
	return string(s)
}
