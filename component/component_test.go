package component

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/apikit/logger"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	c := &mockComponent{name: "dispatcher", health: Health{Name: "dispatcher", Status: StatusHealthy}}

	if err := r.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	c := &mockComponent{name: "dispatcher"}
	r.Register(c)

	err := r.Register(&mockComponent{name: "dispatcher"})
	if err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	c := &mockComponent{name: "dispatcher"}
	r.Register(c)

	got := r.Get("dispatcher")
	if got == nil {
		t.Fatal("expected to get registered component")
	}
	if got.Name() != "dispatcher" {
		t.Errorf("expected 'dispatcher', got %q", got.Name())
	}
}

func TestGetNotFound(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	got := r.Get("missing")
	if got != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAll(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	order := []string{}

	r.Register(&mockComponent{
		name: "dispatcher", startOrder: &order,
		health: Health{Name: "dispatcher", Status: StatusHealthy},
	})
	r.Register(&mockComponent{
		name: "io-executor", startOrder: &order,
		health: Health{Name: "io-executor", Status: StatusHealthy},
	})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	if len(order) != 2 {
		t.Fatalf("expected 2 starts, got %d", len(order))
	}
	if order[0] != "dispatcher" || order[1] != "io-executor" {
		t.Errorf("expected start order [dispatcher, io-executor], got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.Register(&mockComponent{name: "dispatcher", startErr: fmt.Errorf("closed")})

	err := r.StartAll(context.Background())
	if err == nil {
		t.Error("expected error from StartAll")
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	order := []string{}

	r.Register(&mockComponent{name: "dispatcher", stopOrder: &order, health: Health{Name: "dispatcher", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "io-executor", stopOrder: &order, health: Health{Name: "io-executor", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "user-executor", stopOrder: &order, health: Health{Name: "user-executor", Status: StatusHealthy}})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(order) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(order))
	}
	if order[0] != "user-executor" || order[1] != "io-executor" || order[2] != "dispatcher" {
		t.Errorf("expected reverse stop order [user-executor, io-executor, dispatcher], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	order := []string{}
	r.Register(&mockComponent{name: "dispatcher", stopOrder: &order})

	// Don't start, then stop
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.Register(&mockComponent{
		name: "dispatcher", stopErr: fmt.Errorf("stop failed"),
		health: Health{Name: "dispatcher", Status: StatusHealthy},
	})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.Register(&mockComponent{
		name:   "dispatcher",
		health: Health{Name: "dispatcher", Status: StatusHealthy, Message: "ready"},
	})
	r.Register(&mockComponent{
		name:   "io-executor",
		health: Health{Name: "io-executor", Status: StatusUnhealthy, Message: "timeout"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected dispatcher healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected io-executor unhealthy, got %s", results[1].Status)
	}
}

func TestHealthStatusConstants(t *testing.T) {
	if StatusHealthy != "healthy" {
		t.Errorf("expected 'healthy', got %q", StatusHealthy)
	}
	if StatusUnhealthy != "unhealthy" {
		t.Errorf("expected 'unhealthy', got %q", StatusUnhealthy)
	}
	if StatusDegraded != "degraded" {
		t.Errorf("expected 'degraded', got %q", StatusDegraded)
	}
}

func TestStopAllContinuesAfterError(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	order := []string{}
	r.Register(&mockComponent{name: "executor", stopOrder: &order, stopErr: fmt.Errorf("busy")})
	r.Register(&mockComponent{name: "dispatcher", stopOrder: &order, stopErr: fmt.Errorf("stuck")})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected error from StopAll")
	}
	if len(order) != 2 {
		t.Errorf("expected both components stopped, got %v", order)
	}
	if !strings.Contains(err.Error(), "busy") || !strings.Contains(err.Error(), "stuck") {
		t.Errorf("expected both failures reported, got %v", err)
	}
}

func TestFunc(t *testing.T) {
	stopped := false
	c := &Func{ComponentName: "executor", StopFunc: func(context.Context) error {
		stopped = true
		return nil
	}}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil || !stopped {
		t.Errorf("expected stop func to run, err=%v", err)
	}
	if h := c.Health(context.Background()); h.Status != StatusHealthy || h.Name != "executor" {
		t.Errorf("unexpected default health %+v", h)
	}
}
