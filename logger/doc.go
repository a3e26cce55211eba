// Package logger provides structured logging on zerolog.
//
// Output goes to stderr unless configured otherwise, so a command can keep
// stdout for response bodies. Loggers are scoped by component and pick up
// the request, trace and span IDs of a context:
//
//	log := logger.WithComponent("httpclient").WithContext(ctx)
//	log.Debug("request sent", logger.Fields(logger.FieldMethod, "GET", logger.FieldStatus, 200))
//
// # Configuration
//
//	logging:
//	  level: info
//	  format: json
//	  output: stderr
package logger
