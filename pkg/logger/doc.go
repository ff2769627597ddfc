// Package logger builds the service's slog logger.
//
// Logs are JSON on stdout by default. Context extractors add request-scoped
// attributes (request ID, business ID) to every record, and when a Sentry
// DSN is configured records are also shipped to Sentry: errors become
// issues, warnings and errors are kept as searchable logs.
//
//	log := logger.New(cfg.Log, httpapi.RequestIDExtractor())
//	importLog := logger.Component(log, "imports")
//	importLog.InfoContext(ctx, "preview ready", slog.Int("total", n))
//
// Use [NewNope] in tests.
package logger
