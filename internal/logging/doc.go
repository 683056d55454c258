// Package logging provides structured logging for renovad.
//
// It wraps Zap with context-aware methods and optional OpenTelemetry
// log output. Correlation fields (session ID, user ID, turn ID) are
// carried on the context and injected into every log line
// automatically:
//
//	ctx = logging.WithSessionID(ctx, "sess_123")
//	ctx = logging.WithUserID(ctx, "user_9")
//	logger.Info(ctx, "turn processed", zap.Duration("duration", d))
//
// Configuration follows standard renovad precedence: defaults, then
// config file, then RENOVAD_LOGGING_* environment variables.
package logging
