package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory so a crash in the
// middle of a batch can still show what the last files were doing.
type RingTracer struct {
	mu     sync.Mutex
	buf    []Event
	next   int
	filled bool
	level  Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.buf[t.next] = stored
	t.next++
	if t.next == len(t.buf) {
		t.next, t.filled = 0, true
	}
	t.mu.Unlock()
}

// Snapshot copies the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.filled {
		return append([]Event(nil), t.buf[:t.next]...)
	}
	out := make([]Event, 0, len(t.buf))
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}

// Dump writes Snapshot to w in format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

// DumpRing dumps the ring behind t, looking through a MultiTracer.
// ok is false when t keeps no ring.
func DumpRing(t Tracer, w io.Writer, format Format) (ok bool, err error) {
	switch tt := t.(type) {
	case *RingTracer:
		return true, tt.Dump(w, format)
	case *MultiTracer:
		for _, inner := range tt.tracers {
			if ok, err := DumpRing(inner, w, format); ok {
				return ok, err
			}
		}
	}
	return false, nil
}
