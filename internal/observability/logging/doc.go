// Package logging builds the service's slog loggers and attaches request
// and trace identifiers to them.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	logging.FromRequest(ctx, logger).Info("news saved", slog.Int64("id", id))
package logging
