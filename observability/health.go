package observability

import "context"

// HealthStatus represents the health state of a component or context.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of one component of a context.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ContextHealth aggregates the health of a context's components.
type ContextHealth struct {
	Context    string       `json:"context"`
	Status     HealthStatus `json:"status"`
	API        string       `json:"api,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// NewContextHealth creates a report with status up.
func NewContextHealth(name, api string) *ContextHealth {
	return &ContextHealth{Context: name, Status: HealthStatusUp, API: api}
}

// AddComponent adds a component result, degrading the overall status as needed.
func (h *ContextHealth) AddComponent(ch Health) {
	h.Components = append(h.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		h.Status = HealthStatusDown
	case HealthStatusDegraded:
		if h.Status != HealthStatusDown {
			h.Status = HealthStatusDegraded
		}
	}
}
