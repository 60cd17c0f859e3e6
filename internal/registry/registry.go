package registry

import (
	"errors"
	"fmt"
	"sync"

	"agentcrew/internal/agent"
	"agentcrew/internal/model"
	"agentcrew/pkg/constants"
)

// ErrDuplicateAgent is returned when an agent name is registered twice.
var ErrDuplicateAgent = errors.New("duplicate agent name")

// Registry holds all known agents for the process lifetime. Agents are
// registered once at startup; registration order is preserved because
// it breaks selection ties.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*agent.Agent
	order  []*agent.Agent
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*agent.Agent)}
}

// Register adds an agent keyed by its unique name.
func (r *Registry) Register(a *agent.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[a.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, a.Name())
	}
	r.byName[a.Name()] = a
	r.order = append(r.order, a)
	return nil
}

// Get returns an agent by name.
func (r *Registry) Get(name string) (*agent.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// List returns all agents in registration order.
func (r *Registry) List() []*agent.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*agent.Agent(nil), r.order...)
}

// ListIdle returns all agents currently idle, in registration order.
func (r *Registry) ListIdle() []*agent.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var idle []*agent.Agent
	for _, a := range r.order {
		if a.Status() == constants.AgentStatusIdle {
			idle = append(idle, a)
		}
	}
	return idle
}

// LeastBusy returns the non-offline agent with the fewest in-flight
// tasks, ties broken by registration order. Used only when no agent is
// idle, so a task is never dropped for lack of availability.
func (r *Registry) LeastBusy() *agent.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *agent.Agent
	bestLoad := 0
	for _, a := range r.order {
		if a.Status() == constants.AgentStatusOffline {
			continue
		}
		load := a.ActiveTasks()
		if best == nil || load < bestLoad {
			best = a
			bestLoad = load
		}
	}
	return best
}

// Snapshots returns a status snapshot per agent in registration order.
func (r *Registry) Snapshots() []model.AgentSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.AgentSnapshot, 0, len(r.order))
	for _, a := range r.order {
		out = append(out, a.Snapshot())
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
