package statusline

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer makes bytes.Buffer safe for the worker goroutine and test
// assertions to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestStatusLine(t *testing.T, opts ...Option) (*StatusLine, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	base := []Option{
		WithOutput(buf),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	}
	s := New(append(base, opts...)...)
	t.Cleanup(func() { s.Close() })
	return s, buf
}

func TestIdempotentRepaint(t *testing.T) {
	s, buf := newTestStatusLine(t)
	frozen := time.Now()
	s.start = frozen
	s.now = func() time.Time { return frozen }

	require.NoError(t, s.Redraw().Wait())
	first := buf.String()
	require.NotEmpty(t, first)

	// Same state, same instant: the second render must not write.
	require.NoError(t, s.Redraw().Wait())
	assert.Equal(t, first, buf.String())
}

func TestRenderedLineShape(t *testing.T) {
	s, _ := newTestStatusLine(t)
	frozen := time.Now()
	s.start = frozen.Add(-(time.Hour + 2*time.Minute + 3*time.Second))
	s.now = func() time.Time { return frozen }

	t.Run("counter shown from zero, total hidden", func(t *testing.T) {
		assert.Equal(t, "1:02:03 | 0", s.Redraw().Text())
	})

	t.Run("total appears once set", func(t *testing.T) {
		assert.Equal(t, "1:02:03 | 0/9", s.SetTotal(9).Text())
	})

	t.Run("negative total hides it again", func(t *testing.T) {
		assert.Equal(t, "1:02:03 | 0", s.SetTotal(-1).Text())
	})

	t.Run("label segment appended after counter", func(t *testing.T) {
		assert.Equal(t, "1:02:03 | 0 | indexing", s.SetMessage("indexing").Text())
	})

	t.Run("negative counter hides the whole segment", func(t *testing.T) {
		hidden, _ := newTestStatusLine(t, WithInitialCount(-1))
		hidden.start = s.start
		hidden.now = s.now
		assert.Equal(t, "1:02:03", hidden.Redraw().Text())
	})
}

func TestEndToEndScenario(t *testing.T) {
	s, _ := newTestStatusLine(t, WithStartTime(time.Now()))

	line := s.AddWork("file1.txt").Text()
	assert.Regexp(t, regexp.MustCompile(`^\d+:\d{2}:\d{2} \| 0 \| file1\.txt$`), line)

	line = s.IncrementCount().Text()
	assert.Regexp(t, regexp.MustCompile(`^\d+:\d{2}:\d{2} \| 1 \| file1\.txt$`), line)

	line = s.Notify(SeverityError, "disk full", 80*time.Millisecond).Text()
	assert.Contains(t, line, "disk full")
	assert.NotContains(t, line, "file1.txt")

	time.Sleep(120 * time.Millisecond)
	line = s.Redraw().Text()
	assert.Contains(t, line, "file1.txt")
	assert.NotContains(t, line, "disk full")

	line = s.RemoveWork("file1.txt").Text()
	assert.Regexp(t, regexp.MustCompile(`^\d+:\d{2}:\d{2} \| 1$`), line)
}

func TestWorkLabelTruncation(t *testing.T) {
	s, _ := newTestStatusLine(t, WithMaxLabelWidth(10))

	line := s.AddWork("abcdefghijklmno").Text()
	assert.Contains(t, line, "abcde…lmno")
	assert.Equal(t, "abcde…lmno", s.StatusLabel())

	// Messages and notifications are shown untruncated.
	require.NoError(t, s.SetMessage("a message well beyond ten characters").Wait())
	assert.Equal(t, "a message well beyond ten characters", s.StatusLabel())
}

func TestNotificationExpiryIsLazy(t *testing.T) {
	s, _ := newTestStatusLine(t)

	require.NoError(t, s.Notify(SeverityWarn, "disk low", 100*time.Millisecond).Wait())
	assert.Equal(t, "disk low", s.StatusLabel())

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, s.StatusLabel())
}

func TestNotificationDefaultDuration(t *testing.T) {
	s, _ := newTestStatusLine(t, WithNotificationDuration(50*time.Millisecond))

	require.NoError(t, s.Notify(SeverityInfo, "saved", 0).Wait())
	assert.Equal(t, "saved", s.StatusLabel())

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, s.StatusLabel())
}

func TestConcurrentIncrementsAreExact(t *testing.T) {
	s, _ := newTestStatusLine(t)

	const goroutines = 8
	const perGoroutine = 1000

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				s.IncrementCount()
			}
		}()
	}
	wg.Wait()

	line := s.Redraw().Text()
	assert.Contains(t, line, fmt.Sprintf("| %d", goroutines*perGoroutine))

	count, _ := s.state.progress()
	assert.EqualValues(t, goroutines*perGoroutine, count)
}

func TestPrintLinesNeverInterleave(t *testing.T) {
	s, buf := newTestStatusLine(t)

	const writers = 8
	const linesPerWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < linesPerWriter; i++ {
				s.PrintLine(fmt.Sprintf("writer-%d-line-%04d", w, i))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, s.Redraw().Wait())

	// Every chunk that ends in a line break must carry exactly one intact
	// printed line after its final carriage return.
	var got []string
	for _, chunk := range strings.Split(buf.String(), "\n") {
		if idx := strings.LastIndexByte(chunk, '\r'); idx >= 0 {
			chunk = chunk[idx+1:]
		}
		chunk = strings.TrimRight(chunk, " ")
		if strings.HasPrefix(chunk, "writer-") {
			got = append(got, chunk)
		}
	}

	require.Len(t, got, writers*linesPerWriter)
	seen := make(map[string]bool, len(got))
	valid := regexp.MustCompile(`^writer-\d-line-\d{4}$`)
	for _, line := range got {
		assert.Regexp(t, valid, line)
		assert.False(t, seen[line], "line printed twice: %s", line)
		seen[line] = true
	}
}

func TestCleanShutdown(t *testing.T) {
	s, buf := newTestStatusLine(t)

	line := s.SetMessage("wrapping up").Text()
	require.NotEmpty(t, line)

	require.NoError(t, s.Close())

	// The sink ends on a blank status row padded over the last line.
	want := "\r" + strings.Repeat(" ", len(line)) + "\r"
	assert.True(t, strings.HasSuffix(buf.String(), want),
		"sink should end with a blank padded row, got %q", buf.String())

	// Nothing submitted after Close begins.
	fut := s.Redraw()
	assert.ErrorIs(t, fut.Wait(), ErrClosed)
	assert.ErrorIs(t, s.PrintLine("too late").Wait(), ErrClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	s, _ := newTestStatusLine(t)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestCloseReportsStuckWorker(t *testing.T) {
	s, _ := newTestStatusLine(t,
		WithDrainTimeout(20*time.Millisecond),
		WithCancelTimeout(20*time.Millisecond),
	)

	release := make(chan struct{})
	defer close(release)
	s.Emit(SeverityInfo, "", func() error {
		<-release
		return nil
	})
	queued := s.Redraw()

	assert.ErrorIs(t, s.Close(), ErrShutdownTimeout)
	assert.ErrorIs(t, queued.Wait(), ErrShutdown)
}

func TestJobsSubmittedBeforeCloseComplete(t *testing.T) {
	s, buf := newTestStatusLine(t)

	var futs []*Future
	for i := 0; i < 20; i++ {
		futs = append(futs, s.PrintLine(fmt.Sprintf("line-%d", i)))
	}
	require.NoError(t, s.Close())

	for _, fut := range futs {
		assert.NoError(t, fut.Err())
	}
	out := buf.String()
	for i := 0; i < 20; i++ {
		assert.Contains(t, out, fmt.Sprintf("line-%d", i))
	}
}

func TestEmitInterleavesOutput(t *testing.T) {
	s, buf := newTestStatusLine(t)

	require.NoError(t, s.SetMessage("steady state").Wait())

	fut := s.Emit(SeverityInfo, "", func() error {
		_, err := buf.Write([]byte("a whole log line\n"))
		return err
	})
	require.NoError(t, fut.Wait())

	out := buf.String()
	idx := strings.Index(out, "a whole log line\n")
	require.GreaterOrEqual(t, idx, 0)

	// The status row is repainted after the emitted output.
	tail := out[idx+len("a whole log line\n"):]
	assert.Contains(t, tail, "steady state")
}

func TestWriteFailuresSurfaceOnFutureOnly(t *testing.T) {
	buf := &syncBuffer{}
	s := New(
		WithOutput(failingSink{}),
		WithLogger(slog.New(slog.NewTextHandler(buf, nil))),
	)
	defer s.Close()

	fut := s.SetMessage("doomed")
	err := fut.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")

	// The coordinator itself stays usable.
	assert.Equal(t, "doomed", s.StatusLabel())
	require.NoError(t, s.Close())
}
