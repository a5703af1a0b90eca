// Package observability groups logging, metrics and tracing for the CMS.
//
// Subpackages:
//   - logging: slog JSON logger with request and trace correlation
//   - metrics: Prometheus collectors for content, uploads and AI drafts
//   - tracing: OpenTelemetry tracer provider and HTTP middleware
package observability
