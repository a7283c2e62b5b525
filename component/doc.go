// Package component defines the lifecycle of resources owned by an engine
// context. The context registers its dispatcher, executors and stores in a
// Registry and stops them in reverse order on Close.
package component
