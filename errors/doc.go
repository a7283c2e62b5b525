// Package errors defines the error taxonomy of the invocation engine.
//
// Every failure surfaced by the engine is an *AppError carrying a machine-readable
// ErrorCode. The codes group into five classes:
//
//   - configuration: missing properties, invalid descriptors, unknown strategies
//   - argument: call-time arguments that cannot produce a request
//   - transport: connection failures, timeouts and retryable server errors
//   - remote: non-2xx responses, with status code and captured body
//   - parse: response bodies that could not be converted to a result
//
// Remote and transport errors carry the request method and a redacted URL so a
// failed call can be diagnosed without leaking credentials.
package errors
