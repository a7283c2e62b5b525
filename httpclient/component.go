package httpclient

import (
	"context"

	"github.com/kbukum/apikit/component"
	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/resilience"
)

var _ component.Component = (*Dispatcher)(nil)

// Start implements component.Component. The dispatcher is ready once created.
func (d *Dispatcher) Start(context.Context) error {
	if d.closed.Load() {
		return apperrors.AlreadyClosed("dispatcher " + d.cfg.Name)
	}
	return nil
}

// Stop implements component.Component by closing the dispatcher.
func (d *Dispatcher) Stop(ctx context.Context) error { return d.Close(ctx) }

// Health reports unhealthy after Close and degraded while the breaker is not closed.
func (d *Dispatcher) Health(context.Context) component.Health {
	h := component.Health{Name: d.cfg.Name, Status: component.StatusHealthy}
	switch {
	case d.closed.Load():
		h.Status = component.StatusUnhealthy
		h.Message = "closed"
	case d.breaker != nil && d.breaker.State() == resilience.StateOpen:
		h.Status = component.StatusUnhealthy
		h.Message = "circuit open"
	case d.breaker != nil && d.breaker.State() == resilience.StateHalfOpen:
		h.Status = component.StatusDegraded
		h.Message = "circuit half-open"
	}
	return h
}
