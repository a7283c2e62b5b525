// Package httpclient sends engine requests over HTTP.
//
// A Dispatcher owns a pooled HTTP/1.1 and HTTP/2 transport and runs every
// request through the same pipeline: an optional concurrency bound, retries
// with exponential backoff, an optional rate limiter and circuit breaker, the
// attempt middlewares, and a manual redirect loop.
//
// Only failures accepted by the Classifier are retried. Client errors (4xx),
// timeouts, cancellations and redirect-limit failures never are, whatever the
// rules say.
//
//	d, err := httpclient.New(httpclient.Config{
//	    Name:           "acme",
//	    MaxRetries:     3,
//	    MaxRedirects:   5,
//	    RequestTimeout: 10 * time.Second,
//	}, httpclient.WithMiddleware(httpclient.WithLogging(log)))
//
//	req, _ := httpclient.NewRequest(http.MethodGet, "https://api.acme.test/v1/items")
//	resp, err := d.Dispatch(ctx, req)
//	if err != nil {
//	    return err
//	}
//	defer resp.Release()
//
// Requests are immutable; every modifier returns a copy, so the same request
// may be replayed by retries, redirects and hedged transports.
package httpclient
