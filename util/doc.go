// Package util holds the size parser and the secret redaction helpers
// shared by the engine packages.
package util
