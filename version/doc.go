// Package version carries the apikit build version. It feeds the default
// user-agent property and the version command of the apikit tool.
//
// The values are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/apikit/version.Version=1.0.0"
package version
