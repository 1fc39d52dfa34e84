package statusline

import "context"

// Log couples a leveled log message to the status display as one queued
// unit: clear the row, emit through the configured logger, install a
// notification carrying msg when the logger has that level enabled (a
// suppressed level never produces a wasted notification), and repaint.
// args are slog key-value pairs.
func (s *StatusLine) Log(ctx context.Context, sev Severity, msg string, args ...any) *Future {
	note := ""
	if s.logger.Enabled(ctx, sev.Level()) {
		note = msg
	}
	return s.Emit(sev, note, func() error {
		s.logger.Log(ctx, sev.Level(), msg, args...)
		return nil
	})
}

// Trace logs at trace level through the status line.
func (s *StatusLine) Trace(msg string, args ...any) *Future {
	return s.Log(context.Background(), SeverityTrace, msg, args...)
}

// Debug logs at debug level through the status line.
func (s *StatusLine) Debug(msg string, args ...any) *Future {
	return s.Log(context.Background(), SeverityDebug, msg, args...)
}

// Info logs at info level through the status line.
func (s *StatusLine) Info(msg string, args ...any) *Future {
	return s.Log(context.Background(), SeverityInfo, msg, args...)
}

// Warn logs at warn level through the status line.
func (s *StatusLine) Warn(msg string, args ...any) *Future {
	return s.Log(context.Background(), SeverityWarn, msg, args...)
}

// Error logs at error level through the status line.
func (s *StatusLine) Error(msg string, args ...any) *Future {
	return s.Log(context.Background(), SeverityError, msg, args...)
}
