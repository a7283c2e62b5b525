package engine

import (
	"net/http"
	"time"

	"github.com/kbukum/apikit/credentials"
	"github.com/kbukum/apikit/executor"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// Wiring is the mutable set of collaborators a Context is assembled from.
// Modules adjust it; once Build finishes it is no longer touched.
type Wiring struct {
	Strategies *Strategies
	Logger     *logger.Logger

	// Transport replaces the default HTTP transport.
	Transport http.RoundTripper
	// Middlewares wrap every dispatch attempt, after the built-in ones.
	Middlewares []httpclient.Middleware
	// RetryRules replace the default retry classification when non-nil.
	RetryRules []httpclient.RetryRule

	// Filters names the context-wide request filters, applied in order
	// before the operation's own filters.
	Filters []string
	Store   credentials.Store

	// Metrics enables dispatch and invoke metrics. Tracing adds spans.
	Metrics *observability.Metrics
	Tracing bool

	// IOThreads and UserThreads start as the resolved settings. Executors set
	// here are used as given and are not shut down by the Context.
	IOThreads    int
	UserThreads  int
	IOExecutor   executor.Executor
	UserExecutor executor.Executor

	Now func() time.Time
}

// Module configures part of a Context.
type Module interface {
	Configure(w *Wiring) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(w *Wiring) error

// Configure calls f.
func (f ModuleFunc) Configure(w *Wiring) error { return f(w) }

// LoggingModule makes the Context log through log.
func LoggingModule(log *logger.Logger) Module {
	return ModuleFunc(func(w *Wiring) error {
		w.Logger = log
		return nil
	})
}

// TransportModule replaces the default transport with rt.
func TransportModule(rt http.RoundTripper) Module {
	return ModuleFunc(func(w *Wiring) error {
		w.Transport = rt
		return nil
	})
}

// MiddlewareModule appends dispatch middlewares.
func MiddlewareModule(mw ...httpclient.Middleware) Module {
	return ModuleFunc(func(w *Wiring) error {
		w.Middlewares = append(w.Middlewares, mw...)
		return nil
	})
}

// RetryModule replaces the retry classification with rules. Client errors,
// timeouts and cancellations are never retried whatever the rules say.
func RetryModule(rules ...httpclient.RetryRule) Module {
	return ModuleFunc(func(w *Wiring) error {
		w.RetryRules = append([]httpclient.RetryRule{}, rules...)
		return nil
	})
}

// FiltersModule adds context-wide request filters by name.
func FiltersModule(names ...string) Module {
	return ModuleFunc(func(w *Wiring) error {
		w.Filters = append(w.Filters, names...)
		return nil
	})
}

// CredentialStoreModule replaces the in-memory credential store.
func CredentialStoreModule(store credentials.Store) Module {
	return ModuleFunc(func(w *Wiring) error {
		w.Store = store
		return nil
	})
}

// ObservabilityModule records metrics on m, when not nil, and opens a span
// per dispatch attempt.
func ObservabilityModule(m *observability.Metrics) Module {
	return ModuleFunc(func(w *Wiring) error {
		w.Metrics = m
		w.Tracing = true
		return nil
	})
}

// ExecutorModule runs dispatches on io and continuations on user. Either may
// be nil to keep the default. The caller shuts them down.
func ExecutorModule(io, user executor.Executor) Module {
	return ModuleFunc(func(w *Wiring) error {
		if io != nil {
			w.IOExecutor = io
		}
		if user != nil {
			w.UserExecutor = user
		}
		return nil
	})
}

// SingleThreadedModule runs everything on the calling goroutine, which makes
// asynchronous calls deterministic in tests.
func SingleThreadedModule() Module {
	return ModuleFunc(func(w *Wiring) error {
		w.IOThreads, w.UserThreads = 0, 0
		return nil
	})
}

// StrategiesModule lets fn register binders, parsers and fallbacks.
func StrategiesModule(fn func(s *Strategies)) Module {
	return ModuleFunc(func(w *Wiring) error {
		fn(w.Strategies)
		return nil
	})
}

// ClockModule sets the clock used by time based filters.
func ClockModule(now func() time.Time) Module {
	return ModuleFunc(func(w *Wiring) error {
		w.Now = now
		return nil
	})
}
