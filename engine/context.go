package engine

import (
	"context"
	"maps"
	"sync/atomic"

	"github.com/kbukum/apikit/catalog"
	"github.com/kbukum/apikit/component"
	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/executor"
	"github.com/kbukum/apikit/fallback"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/paging"
	"github.com/kbukum/apikit/parser"
	"github.com/kbukum/apikit/properties"
	"github.com/kbukum/apikit/rest"
)

const (
	statusOK       = "ok"
	statusFallback = "fallback"
)

// Context is a wired client for one API endpoint. It owns the dispatcher and
// the executors it created, and must be closed to release them. All methods
// are safe for concurrent use.
type Context struct {
	name     string
	bag      properties.Bag
	settings properties.Settings
	table    *catalog.Table

	requests   *rest.Builder
	strategies *Strategies
	ops        map[string]*boundOperation
	dispatcher *httpclient.Dispatcher

	io    executor.Executor
	user  executor.Executor
	owned []executor.Executor

	log      *logger.Logger
	metrics  *observability.Metrics
	registry *component.Registry
	closed   atomic.Bool
}

// boundOperation is an operation with its strategies looked up.
type boundOperation struct {
	op          *catalog.Operation
	binder      rest.Binder
	parser      parser.Parser[any]
	pages       parser.PageParser[any]
	markerParam string
	fallback    fallback.Fallback
	filters     []rest.Filter
}

func (c *Context) bind(op *catalog.Operation, env FilterEnv) (*boundOperation, error) {
	s := c.strategies
	b := &boundOperation{op: op, parser: parser.Void()}
	if name := op.Binder(); name != "" {
		b.binder = s.binders[name]
	}
	if name := op.Parser(); name != "" {
		b.parser = s.parsers[name]
	}
	if name := op.Fallback(); name != "" {
		b.fallback = s.fallback[name]
	}
	if p, ok := op.Paging(); ok {
		pages, err := s.pageParserFor(p)
		if err != nil {
			return nil, apperrors.Configuration("operation %s", op.Key()).WithCause(err)
		}
		b.pages = pages
		b.markerParam = p.MarkerParam
	}
	filters, err := s.filtersFor(op.Filters(), env)
	if err != nil {
		return nil, err
	}
	b.filters = filters
	return b, nil
}

// Name returns the Context name.
func (c *Context) Name() string { return c.name }

// Properties returns the resolved property bag.
func (c *Context) Properties() properties.Bag { return c.bag }

// Settings returns the typed settings derived from the property bag.
func (c *Context) Settings() properties.Settings { return c.settings }

// Operations returns the operation keys in sorted order.
func (c *Context) Operations() []string { return c.table.Keys() }

// Operation returns the descriptor registered under key.
func (c *Context) Operation(key string) (*catalog.Operation, bool) { return c.table.Lookup(key) }

// Dispatcher returns the dispatcher requests are sent through.
func (c *Context) Dispatcher() *httpclient.Dispatcher { return c.dispatcher }

// UserExecutor returns the executor continuations run on.
func (c *Context) UserExecutor() executor.Executor { return c.user }

func (c *Context) lookup(key string) (*boundOperation, error) {
	if c.closed.Load() {
		return nil, apperrors.AlreadyClosed("context " + c.name)
	}
	b, ok := c.ops[key]
	if !ok {
		return nil, apperrors.InvalidArgument(key, "no such operation in "+c.table.API())
	}
	return b, nil
}

// Invoke runs the operation key with args and returns the parsed result.
// When the operation declares a fallback, a failure is first offered to it.
// Argument and configuration errors are returned before any request is sent.
func (c *Context) Invoke(ctx context.Context, key string, args rest.Args) (any, error) {
	b, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	inv := observability.NewInvocation(c.name, c.settings.Provider, c.settings.API, key, c.metrics)
	ctx, span := inv.Start(ctx)
	v, status, err := c.invoke(ctx, b, args)
	inv.End(ctx, span, status, err)
	return v, err
}

func (c *Context) invoke(ctx context.Context, b *boundOperation, args rest.Args) (any, string, error) {
	v, err := c.call(ctx, b, args)
	if err == nil {
		return v, statusOK, nil
	}
	v, err = c.recover(b, err)
	if err != nil {
		return nil, statusOf(err), err
	}
	return v, statusFallback, nil
}

func (c *Context) call(ctx context.Context, b *boundOperation, args rest.Args) (any, error) {
	req, err := c.requests.Build(ctx, b.op, b.binder, b.filters, args)
	if err != nil {
		return nil, err
	}
	resp, err := c.dispatcher.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Release()
	return b.parser.Parse(resp)
}

// recover offers err to the operation's fallback and returns the substitute
// value, or an error when the failure stands. Errors raised before dispatch
// are never recovered.
func (c *Context) recover(b *boundOperation, err error) (any, error) {
	if b.fallback == nil || apperrors.IsArgument(err) || apperrors.IsConfiguration(err) || apperrors.IsClosed(err) {
		return nil, err
	}
	v, ferr := b.fallback.Recover(err)
	if ferr != nil {
		return nil, ferr
	}
	c.log.Debug("fallback applied", logger.Fields(
		logger.FieldOperation, b.op.Key(),
		logger.FieldFallback, b.op.Fallback(),
		logger.FieldError, err.Error(),
	))
	return v, nil
}

// InvokeAsync runs Invoke on the io executor. Cancelling the future cancels
// the request without affecting other calls.
func (c *Context) InvokeAsync(ctx context.Context, key string, args rest.Args) *executor.Future[any] {
	if _, err := c.lookup(key); err != nil {
		return executor.Completed[any](nil, err)
	}
	ctx, cancel := context.WithCancel(ctx)
	f := executor.NewFuture[any](cancel)
	err := c.io.Go(ctx, func(ctx context.Context) {
		defer cancel()
		f.Complete(c.Invoke(ctx, key, args))
	})
	if err != nil {
		cancel()
		f.Complete(nil, err)
	}
	return f
}

// Pages returns the lazy page sequence of the listing operation key. No
// request is sent until the first page is asked for.
func (c *Context) Pages(key string, args rest.Args) (*paging.Pages[any], error) {
	fetch, err := c.pageFetcher(key, args)
	if err != nil {
		return nil, err
	}
	return paging.New(fetch), nil
}

func (c *Context) pageFetcher(key string, args rest.Args) (paging.Fetcher[any], error) {
	b, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if b.pages == nil {
		return nil, apperrors.InvalidArgument(key, "operation is not paginated")
	}
	args = maps.Clone(args)
	return func(ctx context.Context, marker string) (paging.Page[any], error) {
		if c.closed.Load() {
			return paging.Page[any]{}, apperrors.AlreadyClosed("context " + c.name)
		}
		inv := observability.NewInvocation(c.name, c.settings.Provider, c.settings.API, key, c.metrics)
		ctx, span := inv.Start(ctx)
		page, status, err := c.fetchPage(ctx, b, args, marker)
		inv.End(ctx, span, status, err)
		return page, err
	}, nil
}

func (c *Context) fetchPage(ctx context.Context, b *boundOperation, args rest.Args, marker string) (paging.Page[any], string, error) {
	page, err := c.page(ctx, b, args, marker)
	if err == nil {
		return page, statusOK, nil
	}
	v, err := c.recover(b, err)
	if err != nil {
		return paging.Page[any]{}, statusOf(err), err
	}
	// A recovered page has no marker, so it ends the sequence.
	items, _ := v.([]any)
	return paging.Page[any]{Items: items}, statusFallback, nil
}

func (c *Context) page(ctx context.Context, b *boundOperation, args rest.Args, marker string) (paging.Page[any], error) {
	req, err := c.requests.BuildPage(ctx, b.op, b.binder, b.filters, args, b.markerParam, marker)
	if err != nil {
		return paging.Page[any]{}, err
	}
	resp, err := c.dispatcher.Dispatch(ctx, req)
	if err != nil {
		return paging.Page[any]{}, err
	}
	defer resp.Release()
	return b.pages.ParsePage(resp)
}

// Close stops the dispatcher and the executors the Context created. It is
// idempotent; calls after the first return nil. Using the Context afterwards
// fails with an already-closed error.
func (c *Context) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.registry.StopAll(ctx)
	c.log.Info("context closed")
	return err
}

// IsClosed reports whether Close has been called.
func (c *Context) IsClosed() bool { return c.closed.Load() }

// Health reports the state of the Context and its components.
func (c *Context) Health(ctx context.Context) *observability.ContextHealth {
	report := observability.NewContextHealth(c.name, c.settings.API)
	if c.closed.Load() {
		report.AddComponent(observability.Health{Name: "context", Status: observability.HealthStatusDown, Message: "closed"})
		return report
	}
	for _, h := range c.registry.HealthAll(ctx) {
		status := observability.HealthStatusUp
		switch h.Status {
		case component.StatusUnhealthy:
			status = observability.HealthStatusDown
		case component.StatusDegraded:
			status = observability.HealthStatusDegraded
		}
		report.AddComponent(observability.Health{Name: h.Name, Status: status, Message: h.Message})
	}
	return report
}

func statusOf(err error) string {
	if ae, ok := apperrors.AsAppError(err); ok {
		return string(ae.Code)
	}
	return "error"
}
