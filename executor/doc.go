// Package executor runs engine work off the caller's goroutine.
//
// A context owns two executors: an io executor that performs dispatches and a
// user executor that runs completion callbacks. A size of zero yields an
// inline executor that runs every task on the submitting goroutine.
package executor
