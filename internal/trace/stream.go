package trace

import (
	"io"
	"sync"
)

// StreamTracer writes every accepted event to w as it arrives.
// Write errors are counted, never returned to the repair loop.
type StreamTracer struct {
	mu      sync.Mutex
	w       io.Writer
	level   Level
	format  Format
	written int
	dropped int
}

// NewStreamTracer writes the chrome array header right away for FormatChrome.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{w: w, level: level, format: format}
	if format == FormatChrome {
		t.write([]byte("{\"traceEvents\":[\n"))
	}
	return t
}

func (t *StreamTracer) write(p []byte) {
	if _, err := t.w.Write(p); err != nil {
		t.dropped++
	}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.format == FormatChrome && t.written > 0 {
		t.write([]byte(",\n"))
	}
	t.write(data)
	t.written++
}

// Dropped is the number of writes that failed so far.
func (t *StreamTracer) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close terminates the chrome array and closes w if it is an owned file.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.format == FormatChrome {
		t.write([]byte("\n]}\n"))
	}
	t.mu.Unlock()

	flushErr := t.Flush()
	if c, ok := t.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return flushErr
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
