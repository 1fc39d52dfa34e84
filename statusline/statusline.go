package statusline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Defaults used when the corresponding option is not given.
const (
	DefaultMaxLabelWidth        = 120
	DefaultNotificationDuration = 6 * time.Second
	DefaultDrainTimeout         = 5 * time.Second
	DefaultCancelTimeout        = 3 * time.Second
)

// StatusLine coordinates one overwritten terminal line across any number of
// goroutines. Create one with New and release it with Close. See the
// package documentation for the rendering and ordering rules.
type StatusLine struct {
	out    io.Writer
	logger *slog.Logger
	rec    Recorder

	maxLabel      int
	noteDur       time.Duration
	drainTimeout  time.Duration
	cancelTimeout time.Duration
	start         time.Time
	now           func() time.Time

	accents accents
	state   *state
	render  *renderer
	worker  *worker

	closeOnce sync.Once
	closeErr  error
}

// Option configures a StatusLine.
type Option func(*StatusLine)

// WithOutput sets the sink. Default is standard error. If the sink has a
// Flush() error method it is flushed after every write.
func WithOutput(w io.Writer) Option {
	return func(s *StatusLine) { s.out = w }
}

// WithLogger sets the logger used by the log bridge. Default slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *StatusLine) { s.logger = logger }
}

// WithStartTime sets the instant elapsed time is measured from. Default is
// the time of construction.
func WithStartTime(t time.Time) Option {
	return func(s *StatusLine) { s.start = t }
}

// WithInitialCount presets the progress counter. A negative value hides
// the whole counter segment, total included, for tools that track work
// without counting it.
func WithInitialCount(n int64) Option {
	return func(s *StatusLine) { s.state.count = n }
}

// WithMaxLabelWidth caps the width of work-item labels.
func WithMaxLabelWidth(n int) Option {
	return func(s *StatusLine) { s.maxLabel = n }
}

// WithNotificationDuration sets the lifetime used when Notify is called
// with a non-positive duration.
func WithNotificationDuration(d time.Duration) Option {
	return func(s *StatusLine) { s.noteDur = d }
}

// WithDrainTimeout bounds Close's orderly drain phase.
func WithDrainTimeout(d time.Duration) Option {
	return func(s *StatusLine) { s.drainTimeout = d }
}

// WithCancelTimeout bounds Close's second wait, after force-cancellation.
func WithCancelTimeout(d time.Duration) Option {
	return func(s *StatusLine) { s.cancelTimeout = d }
}

// WithRecorder attaches an instrumentation recorder.
func WithRecorder(rec Recorder) Option {
	return func(s *StatusLine) { s.rec = rec }
}

// New creates a StatusLine writing to standard error. Nothing is written
// until the first operation runs.
func New(opts ...Option) *StatusLine {
	s := &StatusLine{
		out:           os.Stderr,
		logger:        slog.Default(),
		rec:           nopRecorder{},
		maxLabel:      DefaultMaxLabelWidth,
		noteDur:       DefaultNotificationDuration,
		drainTimeout:  DefaultDrainTimeout,
		cancelTimeout: DefaultCancelTimeout,
		start:         time.Now(),
		now:           time.Now,
		state:         newState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.accents = newAccents(lipgloss.NewRenderer(s.out))
	s.render = &renderer{out: s.out}
	s.worker = newWorker(s.rec.QueueDepth)
	return s
}

// AddWork registers id as in progress. A repaint is enqueued only when the
// set actually changed.
func (s *StatusLine) AddWork(id string) *Future {
	if !s.state.addWork(id) {
		return completedFuture("", nil)
	}
	return s.Redraw()
}

// RemoveWork unregisters id. A repaint is enqueued only when the set
// actually changed.
func (s *StatusLine) RemoveWork(id string) *Future {
	if !s.state.removeWork(id) {
		return completedFuture("", nil)
	}
	return s.Redraw()
}

// IncrementCount bumps the progress counter. The increment itself happens
// synchronously, so concurrent increments are never lost even when their
// repaints coalesce into one visible jump.
func (s *StatusLine) IncrementCount() *Future {
	s.state.incrementCount()
	return s.Redraw()
}

// SetTotal replaces the displayed total. A negative total hides it.
func (s *StatusLine) SetTotal(n int64) *Future {
	s.state.setTotal(n)
	return s.Redraw()
}

// SetMessage installs the persistent status message. It stays visible,
// subject to notification priority, until cleared.
func (s *StatusLine) SetMessage(text string) *Future {
	s.state.setMessage(text)
	return s.Redraw()
}

// ClearMessage removes the persistent status message.
func (s *StatusLine) ClearMessage() *Future {
	s.state.clearMessage()
	return s.Redraw()
}

// Notify installs a transient notification that outranks both the message
// and the work label until it expires. A non-positive duration means the
// configured default. Setting a new notification unconditionally replaces
// the previous one.
func (s *StatusLine) Notify(sev Severity, text string, d time.Duration) *Future {
	if d <= 0 {
		d = s.noteDur
	}
	s.state.setNotification(sev, text, s.now().Add(d))
	s.rec.NotificationRaised(sev)
	return s.Redraw()
}

// ClearNotification drops the current notification, expired or not.
func (s *StatusLine) ClearNotification() *Future {
	s.state.clearNotification()
	return s.Redraw()
}

// Redraw enqueues a repaint of the status row. The returned future's Text
// is the rendered line, whether or not it differed from the previous one.
func (s *StatusLine) Redraw() *Future {
	return s.worker.submit(s.paintStatus)
}

// StatusLabel resolves the label that a render at this instant would show,
// without touching the terminal. Reading an expired notification clears it,
// exactly as a render would.
func (s *StatusLine) StatusLabel() string {
	text, _, _ := s.state.resolve(s.now(), s.maxLabel)
	return text
}

// PrintLine scrolls one full line above the status row and repaints the
// status beneath it.
func (s *StatusLine) PrintLine(line string) *Future {
	return s.PrintLines(line)
}

// PrintLines scrolls the given lines above the status row, repainting the
// status after each one. The whole sequence runs as a single queued unit,
// so lines from concurrent callers never interleave.
func (s *StatusLine) PrintLines(lines ...string) *Future {
	return s.worker.submit(func() (string, error) {
		for _, line := range lines {
			if err := s.render.printLine(line); err != nil {
				return "", err
			}
			s.rec.LinePrinted()
			if _, err := s.render.paint(s.composeLine(s.now())); err != nil {
				return "", err
			}
		}
		return s.render.lastLine, nil
	})
}

// ClearLine blanks the status row without a line break.
func (s *StatusLine) ClearLine() *Future {
	return s.worker.submit(func() (string, error) {
		return "", s.render.clear()
	})
}

// Emit runs fn as one serialized unit: the status row is cleared, fn may
// write whole lines to the sink, and the status is repainted afterwards. A
// non-empty note additionally installs a notification carrying it at sev
// before the repaint. This is the primitive behind the log bridge; use it
// to interleave arbitrary output without racing concurrent callers.
func (s *StatusLine) Emit(sev Severity, note string, fn func() error) *Future {
	return s.worker.submit(func() (string, error) {
		if err := s.render.clear(); err != nil {
			return "", err
		}
		fnErr := fn()
		if note != "" {
			s.state.setNotification(sev, note, s.now().Add(s.noteDur))
			s.rec.NotificationRaised(sev)
		}
		line := s.composeLine(s.now())
		if _, err := s.render.paint(line); err != nil {
			return line, err
		}
		return line, fnErr
	})
}

// Close shuts the coordinator down: a final clear is enqueued, intake
// stops, and the queue drains for up to the drain timeout. If jobs are
// still queued they are force-cancelled with ErrShutdown and the worker
// gets the cancel timeout to finish its in-progress write; failing that,
// ErrShutdownTimeout is returned. Close is idempotent and later calls
// return the first call's result.
func (s *StatusLine) Close() error {
	s.closeOnce.Do(func() {
		s.worker.closeIntake(func() (string, error) {
			return "", s.render.clear()
		})
		s.closeErr = s.worker.awaitStop(s.drainTimeout, s.cancelTimeout)
	})
	return s.closeErr
}

// paintStatus is the body of every render job.
func (s *StatusLine) paintStatus() (string, error) {
	line := s.composeLine(s.now())
	wrote, err := s.render.paint(line)
	s.rec.RenderCompleted(wrote)
	if err != nil {
		// Rendering is best-effort; the failure reaches callers holding the
		// future and the host application carries on.
		s.logger.Debug("status line render failed", "error", err)
	}
	return line, err
}

// composeLine builds "H:MM:SS | count[/total] | label". Hidden counter and
// absent label drop their segments entirely.
func (s *StatusLine) composeLine(now time.Time) string {
	var b strings.Builder
	b.WriteString(formatElapsed(now.Sub(s.start)))

	count, total := s.state.progress()
	if count >= 0 {
		fmt.Fprintf(&b, " | %d", count)
		if total >= 0 {
			fmt.Fprintf(&b, "/%d", total)
		}
	}

	if label, sev, isNote := s.state.resolve(now, s.maxLabel); label != "" {
		b.WriteString(" | ")
		if isNote {
			label = s.accents.render(sev, label)
		}
		b.WriteString(label)
	}
	return b.String()
}

// formatElapsed renders a duration as H:MM:SS, truncating sub-second
// remainders. Hours grow without wrapping.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
