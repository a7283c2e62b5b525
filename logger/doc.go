// Package logger provides structured logging backed by zerolog.
//
// Engine components receive a *Logger through the context builder and tag it
// with their component name:
//
//	log := logger.NewDefault("apikit").WithComponent("dispatcher")
//	log.Debug("dispatch ok", logger.Fields(logger.FieldMethod, "GET", logger.FieldStatus, 200))
//
// URLs passed to loggers must already be redacted; credentials are never logged.
package logger
