package statusline

import (
	"sync"
	"time"
)

// notification is a transient label override with an expiry instant.
type notification struct {
	severity Severity
	text     string
	expires  time.Time
}

// state holds the fields shared between caller-side mutators and the
// worker's read-during-render step. All access goes through mu so a render
// always observes a mutually consistent snapshot.
type state struct {
	mu sync.Mutex

	count int64 // negative hides the counter segment
	total int64 // negative hides the /total suffix

	works   map[string]struct{}
	current string // display hint; revalidated against works on every read

	message    string
	messageSet bool

	note *notification
}

func newState() *state {
	return &state{
		total: -1,
		works: make(map[string]struct{}),
	}
}

// addWork inserts id into the work set. Reports whether membership changed.
func (s *state) addWork(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.works[id]; ok {
		return false
	}
	s.works[id] = struct{}{}
	if len(s.works) == 1 {
		s.current = id
	}
	return true
}

// removeWork deletes id from the work set. Reports whether membership
// changed. The display hint is left stale on purpose; the next read
// revalidates it.
func (s *state) removeWork(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.works[id]; !ok {
		return false
	}
	delete(s.works, id)
	return true
}

func (s *state) incrementCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
}

func (s *state) setTotal(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = n
}

// progress returns the counter and total. Negative values hide the
// corresponding segment.
func (s *state) progress() (count, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, s.total
}

func (s *state) setMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = text
	s.messageSet = true
}

func (s *state) clearMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = ""
	s.messageSet = false
}

// setNotification unconditionally replaces any existing notification,
// expired or not.
func (s *state) setNotification(sev Severity, text string, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note = &notification{severity: sev, text: text, expires: expires}
}

func (s *state) clearNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note = nil
}

// resolve computes the label to display at now, highest priority first:
// unexpired notification, status message, current work item. An empty text
// means the label segment is omitted. Reading an expired notification clears
// the slot as a side effect; that is the only expiry mechanism.
//
// Which in-progress work item is shown is an arbitrary but stable choice:
// the previous pick is kept while it remains a member of the set, otherwise
// any remaining member replaces it.
func (s *state) resolve(now time.Time, maxLabel int) (text string, sev Severity, isNote bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.note != nil {
		if now.Before(s.note.expires) {
			return s.note.text, s.note.severity, true
		}
		s.note = nil
	}

	if s.messageSet {
		return s.message, SeverityInfo, false
	}

	if len(s.works) > 0 {
		if _, ok := s.works[s.current]; !ok {
			for id := range s.works {
				s.current = id
				break
			}
		}
		return truncateMiddle(s.current, maxLabel), SeverityInfo, false
	}

	return "", SeverityInfo, false
}

const ellipsis = '…'

// truncateMiddle shortens s to at most max runes using a middle ellipsis,
// keeping a head and a tail drawn from the original. A string longer than
// max always yields exactly max runes. Max 0 yields "", max 1 yields the
// ellipsis alone.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return string(ellipsis)
	}
	head := max / 2
	tail := max - 1 - head
	out := make([]rune, 0, max)
	out = append(out, runes[:head]...)
	out = append(out, ellipsis)
	out = append(out, runes[len(runes)-tail:]...)
	return string(out)
}
