package statusline

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Severity classifies notifications and log-bridge messages.
type Severity int

const (
	SeverityTrace Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

// LevelTrace is one step finer than slog.LevelDebug, which has no trace
// level of its own.
const LevelTrace = slog.LevelDebug - 4

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityTrace:
		return "trace"
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Level maps the severity onto the slog level used by the log bridge.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityTrace:
		return LevelTrace
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SeverityForLevel maps an slog level back onto a severity. Levels between
// the named ones round down, matching slog's own level handling.
func SeverityForLevel(level slog.Level) Severity {
	switch {
	case level >= slog.LevelError:
		return SeverityError
	case level >= slog.LevelWarn:
		return SeverityWarn
	case level >= slog.LevelInfo:
		return SeverityInfo
	case level >= slog.LevelDebug:
		return SeverityDebug
	default:
		return SeverityTrace
	}
}

// Notification accents, muted and dark-terminal friendly.
var (
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	cyan   = lipgloss.Color("86")
)

// accents holds the severity styles bound to one sink's color profile.
// Writing to a non-terminal sink degrades every style to plain text.
type accents struct {
	err  lipgloss.Style
	warn lipgloss.Style
	info lipgloss.Style
}

func newAccents(r *lipgloss.Renderer) accents {
	return accents{
		err:  r.NewStyle().Bold(true).Foreground(red),
		warn: r.NewStyle().Bold(true).Foreground(yellow),
		info: r.NewStyle().Bold(true).Foreground(cyan),
	}
}

// render wraps text in the accent for sev. Trace and debug carry no accent.
func (a accents) render(sev Severity, text string) string {
	switch sev {
	case SeverityError:
		return a.err.Render(text)
	case SeverityWarn:
		return a.warn.Render(text)
	case SeverityInfo:
		return a.info.Render(text)
	default:
		return text
	}
}
