package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/executor"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/resilience"
)

// Dispatcher sends requests with retries, redirects, timeouts and the optional
// breaker, rate limiter and concurrency bound. It is safe for concurrent use.
type Dispatcher struct {
	cfg        Config
	log        *logger.Logger
	client     *http.Client
	transport  http.RoundTripper
	classifier *Classifier
	exec       executor.Executor
	ownsExec   bool

	breaker  *resilience.CircuitBreaker
	limiter  *resilience.RateLimiter
	bulkhead *resilience.Bulkhead

	middlewares []Middleware
	doer        Doer
	closed      atomic.Bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithExecutor runs asynchronous dispatches on exec. The dispatcher does not
// shut down an executor it was given.
func WithExecutor(exec executor.Executor) Option {
	return func(d *Dispatcher) { d.exec = exec }
}

// WithLogger sets the logger. The default is the global logger.
func WithLogger(log *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithClassifier replaces the retry classifier.
func WithClassifier(c *Classifier) Option {
	return func(d *Dispatcher) { d.classifier = c }
}

// WithMiddleware appends attempt middlewares. The first is outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(d *Dispatcher) { d.middlewares = append(d.middlewares, mw...) }
}

// WithMetricsRecorder records every attempt on m.
func WithMetricsRecorder(m *observability.Metrics) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.middlewares = append(d.middlewares, WithMetrics(m, d.cfg.API))
		}
	}
}

// WithTransport replaces the round tripper, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(d *Dispatcher) { d.transport = rt }
}

// New creates a dispatcher from cfg.
func New(cfg Config, opts ...Option) (*Dispatcher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Configuration("%s", err.Error()).WithCause(err)
	}

	d := &Dispatcher{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.GetGlobalLogger()
	}
	d.log = d.log.WithComponent(cfg.Name)
	if d.classifier == nil {
		d.classifier = DefaultClassifier()
	}
	if d.exec == nil {
		d.exec = executor.NewInline(cfg.Name)
		d.ownsExec = true
	}
	if d.transport == nil {
		t, err := NewTransport(cfg.Transport)
		if err != nil {
			return nil, apperrors.Configuration("%s", err.Error()).WithCause(err)
		}
		d.transport = t
	}
	d.client = &http.Client{
		Transport: d.transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	if cfg.CircuitBreaker != nil {
		cb := *cfg.CircuitBreaker
		cb.IsFailure = countsAgainstBreaker
		if cb.OnStateChange == nil {
			log := d.log
			cb.OnStateChange = func(name string, from, to resilience.State) {
				log.Warn("circuit breaker state changed", logger.Fields(
					"breaker", name, "from", from.String(), "to", to.String()))
			}
		}
		d.breaker = resilience.NewCircuitBreaker(cb)
	}
	if cfg.RateLimiter != nil {
		d.limiter = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	if cfg.MaxConcurrent > 0 {
		d.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          cfg.Name,
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       -1,
		})
	}

	d.doer = Chain(d.middlewares...)(DoerFunc(d.exchange))
	return d, nil
}

// Name returns the dispatcher name.
func (d *Dispatcher) Name() string { return d.cfg.Name }

// Config returns the effective configuration.
func (d *Dispatcher) Config() Config { return d.cfg }

// Executor returns the executor used for asynchronous dispatches.
func (d *Dispatcher) Executor() executor.Executor { return d.exec }

// Breaker returns the circuit breaker, nil when disabled.
func (d *Dispatcher) Breaker() *resilience.CircuitBreaker { return d.breaker }

// Dispatch sends req and returns the final 2xx response. The caller must
// Release it. Non-2xx responses are returned as remote errors carrying the
// status and up to MaxErrorBody bytes of the body.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	if d.closed.Load() {
		return nil, apperrors.AlreadyClosed("dispatcher " + d.cfg.Name)
	}
	if req == nil {
		return nil, apperrors.MissingArgument("request")
	}

	cancel := context.CancelFunc(func() {})
	if d.cfg.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.cfg.RequestTimeout)
	}

	var (
		resp *Response
		err  error
	)
	if d.bulkhead != nil {
		resp, err = resilience.ExecuteWithResult(ctx, d.bulkhead, func() (*Response, error) {
			return d.retry(ctx, req)
		})
	} else {
		resp, err = d.retry(ctx, req)
	}
	if err != nil {
		cancel()
		return nil, contextError(ctx, req, err)
	}
	resp.OnRelease(cancel)
	return resp, nil
}

// DispatchAsync runs Dispatch on the dispatcher's executor. Cancelling the
// future cancels the exchange.
func (d *Dispatcher) DispatchAsync(ctx context.Context, req *Request) *executor.Future[*Response] {
	ctx, cancel := context.WithCancel(ctx)
	f := executor.NewFuture[*Response](cancel)
	err := d.exec.Go(ctx, func(ctx context.Context) {
		resp, err := d.Dispatch(ctx, req)
		if err != nil {
			cancel()
			f.Complete(nil, err)
			return
		}
		resp.OnRelease(cancel)
		if !f.Complete(resp, nil) {
			resp.Release()
		}
	})
	if err != nil {
		cancel()
		f.Complete(nil, err)
	}
	return f
}

// Close rejects further dispatches, shuts down an owned executor and closes
// idle connections. It is idempotent.
func (d *Dispatcher) Close(ctx context.Context) error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	var err error
	if d.ownsExec {
		err = d.exec.Shutdown(ctx)
	}
	d.client.CloseIdleConnections()
	d.log.Debug("dispatcher closed")
	return err
}

// IsClosed reports whether Close was called.
func (d *Dispatcher) IsClosed() bool { return d.closed.Load() }

func (d *Dispatcher) retry(ctx context.Context, req *Request) (*Response, error) {
	rc := d.cfg.retryConfig()
	rc.RetryIf = apperrors.IsRetryable
	rc.OnRetry = func(attempt int, err error, backoff time.Duration) {
		d.log.WithContext(ctx).Debug("retrying dispatch", logger.Fields(
			logger.FieldMethod, req.Method(),
			logger.FieldURL, req.RedactedURL(),
			logger.FieldAttempt, attempt,
			logger.FieldBackoff, backoff.String(),
			logger.FieldError, err.Error(),
		))
	}
	return resilience.Retry(ctx, rc, func(attempt int) (*Response, error) {
		return d.attempt(withAttempt(ctx, attempt), req)
	})
}

// attempt runs one try through the rate limiter, breaker and middlewares and
// marks the resulting error retryable or not.
func (d *Dispatcher) attempt(ctx context.Context, req *Request) (*Response, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				return nil, apperrors.Timeout(err).WithRequest(req.method, req.url.String())
			}
			return nil, contextError(ctx, req, err)
		}
	}

	var resp *Response
	call := func() error {
		var err error
		resp, err = d.doer.Do(ctx, req)
		return err
	}

	var err error
	if d.breaker != nil {
		err = d.breaker.Execute(call)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			ae := apperrors.ConnectionFailed(err).WithRequest(req.method, req.url.String())
			ae.Retryable = false
			return nil, ae
		}
	} else {
		err = call()
	}
	if err == nil {
		return resp, nil
	}

	ae, ok := apperrors.AsAppError(err)
	if !ok {
		ae, _ = apperrors.AsAppError(transportError(ctx, req, err))
	}
	ae.Retryable = d.classifier.ShouldRetry(ae)
	return nil, ae
}

// exchange sends req and follows redirects manually, so that the limit and
// the method and header rewrites are under the dispatcher's control.
func (d *Dispatcher) exchange(ctx context.Context, req *Request) (*Response, error) {
	cur := req
	if cur.HeaderValue("User-Agent") == "" {
		cur = cur.WithHeader("User-Agent", d.cfg.UserAgent)
	}

	for redirects := 0; ; redirects++ {
		hreq, err := cur.toHTTP(ctx)
		if err != nil {
			return nil, apperrors.InvalidArgument("request", err.Error()).WithRequest(cur.method, cur.url.String())
		}
		hresp, err := d.client.Do(hreq)
		if err != nil {
			return nil, transportError(ctx, cur, err)
		}

		location := hresp.Header.Get("Location")
		if isRedirect(hresp.StatusCode) && location != "" {
			_, _ = io.Copy(io.Discard, io.LimitReader(hresp.Body, 4<<10))
			_ = hresp.Body.Close()
			if redirects >= d.cfg.MaxRedirects {
				return nil, apperrors.RedirectLimit(d.cfg.MaxRedirects).WithRequest(cur.method, cur.url.String())
			}
			next, err := redirectRequest(cur, hresp.StatusCode, location)
			if err != nil {
				return nil, err
			}
			d.log.WithContext(ctx).Debug("following redirect", logger.Fields(
				logger.FieldStatus, hresp.StatusCode,
				logger.FieldURL, next.RedactedURL(),
			))
			cur = next
			continue
		}

		if hresp.StatusCode < 200 || hresp.StatusCode >= 300 {
			return nil, remoteError(cur, hresp, d.cfg.MaxErrorBody)
		}
		return newResponse(cur, hresp), nil
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// redirectRequest builds the follow-up request. 303, and 301/302 for methods
// other than GET and HEAD, become a bodiless GET. Credentials are dropped when
// the host changes.
func redirectRequest(cur *Request, status int, location string) (*Request, error) {
	target, err := cur.url.Parse(location)
	if err != nil {
		return nil, apperrors.Remote(status, nil).
			WithRequest(cur.method, cur.url.String()).
			WithDetail("location", location).
			WithCause(err)
	}
	next := cur.WithURL(target)

	toGet := false
	switch status {
	case http.StatusSeeOther:
		toGet = cur.method != http.MethodHead
	case http.StatusMovedPermanently, http.StatusFound:
		toGet = cur.method != http.MethodGet && cur.method != http.MethodHead
	}
	if toGet {
		next = next.WithMethod(http.MethodGet).WithBody(nil).
			WithoutHeader("Content-Type").
			WithoutHeader("Content-Length")
	}

	if !strings.EqualFold(cur.url.Host, target.Host) {
		next = next.WithoutHeader("Authorization").
			WithoutHeader("Cookie").
			WithHost("")
	}
	return next, nil
}

// countsAgainstBreaker ignores client errors and cancellations.
func countsAgainstBreaker(err error) bool {
	if status, ok := apperrors.StatusCode(err); ok && status >= 400 && status < 500 {
		return false
	}
	return !apperrors.HasCode(err, apperrors.ErrCodeCancelled) &&
		!apperrors.IsArgument(err)
}
