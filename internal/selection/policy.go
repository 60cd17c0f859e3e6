package selection

import (
	"errors"
	"sort"
	"strings"

	"agentcrew/internal/agent"
	"agentcrew/internal/registry"
)

// ErrNoSuitableAgent is returned when no agent can take the task.
var ErrNoSuitableAgent = errors.New("no suitable agent available")

const (
	skillMatchScore   = 10
	roleAffinityBonus = 15
)

// defaultRoleKeywords maps a role tag to the description keywords that
// grant it the affinity bonus. A single table replaces per-role
// specializations: adding a role is a config change, not a new type.
var defaultRoleKeywords = map[string][]string{
	"finance":     {"budget", "cost", "revenue", "financial", "forecast", "pricing"},
	"marketing":   {"seo", "search", "keyword", "campaign", "brand", "audience"},
	"engineering": {"code", "architecture", "deploy", "technical", "bug", "api"},
	"operations":  {"process", "workflow", "logistics", "efficiency", "supply"},
	"research":    {"research", "study", "data", "trend", "competitor"},
}

// Policy scores and ranks agents for a task. It is a cheap, auditable
// heuristic: predictable dispatch is the goal, not optimal matching.
type Policy struct {
	registry     *registry.Registry
	roleKeywords map[string][]string
}

// New creates a policy over the given registry with the default
// role-affinity keyword table.
func New(reg *registry.Registry) *Policy {
	return &Policy{registry: reg, roleKeywords: defaultRoleKeywords}
}

// SelectBestAgent picks the highest-scoring idle agent for the task.
// When no agent is idle it falls back to the least-busy one without
// scoring, trading match quality for guaranteed progress.
func (p *Policy) SelectBestAgent(requiredSkills []string, description string) (*agent.Agent, error) {
	idle := p.registry.ListIdle()
	if len(idle) == 0 {
		if fallback := p.registry.LeastBusy(); fallback != nil {
			return fallback, nil
		}
		return nil, ErrNoSuitableAgent
	}

	type scored struct {
		agent *agent.Agent
		score int
	}
	candidates := make([]scored, 0, len(idle))
	for _, a := range idle {
		candidates = append(candidates, scored{agent: a, score: p.Score(a, requiredSkills, description)})
	}

	// Stable sort keeps first-seen order on ties, so selection is
	// deterministic for identical inputs.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	return candidates[0].agent, nil
}

// Score computes the suitability score of one agent for a task:
// +10 per required skill matching any of the agent's skill tags,
// +15 once if the description contains any of the agent's role keywords.
func (p *Policy) Score(a *agent.Agent, requiredSkills []string, description string) int {
	score := 0
	tags := a.Skills()
	for _, required := range requiredSkills {
		for _, tag := range tags {
			if skillMatches(required, tag) {
				score += skillMatchScore
				break
			}
		}
	}

	desc := strings.ToLower(description)
	for _, keyword := range p.roleKeywords[strings.ToLower(a.Role())] {
		if strings.Contains(desc, keyword) {
			score += roleAffinityBonus
			break
		}
	}
	return score
}

// skillMatches reports whether a required skill matches a skill tag:
// case-insensitive substring in either direction, or the required
// skill equals the tag's acronym ("SEO" matches "Search Engine
// Optimization").
func skillMatches(required, tag string) bool {
	req := strings.ToLower(strings.TrimSpace(required))
	t := strings.ToLower(strings.TrimSpace(tag))
	if req == "" || t == "" {
		return false
	}
	if strings.Contains(t, req) || strings.Contains(req, t) {
		return true
	}
	return req == acronym(t)
}

func acronym(phrase string) string {
	var b strings.Builder
	for _, word := range strings.Fields(phrase) {
		b.WriteByte(word[0])
	}
	return b.String()
}
