package utils

import (
	"bytes"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// longer partial lines are logged without waiting for their newline
const maxPendingLine = 64 * 1024

// LogWriterCtx forwards process output to a logger line by line and keeps
// the last lines around for error reports. A line split across writes is
// held back until its newline arrives or Flush is called.
type LogWriterCtx struct {
	logger zerolog.Logger
	limit  int

	mu      sync.Mutex
	lines   []string
	pending []byte
}

func LogWriter(l zerolog.Logger, limit int) *LogWriterCtx {
	return &LogWriterCtx{
		logger: l,
		limit:  limit,
	}
}

func (l *LogWriterCtx) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = append(l.pending, p...)

	for {
		i := bytes.IndexByte(l.pending, '\n')
		if i < 0 {
			break
		}

		l.line(string(l.pending[:i]))
		l.pending = l.pending[i+1:]
	}

	if len(l.pending) > maxPendingLine {
		l.line(string(l.pending))
		l.pending = nil
	}

	return len(p), nil
}

// Flush logs the trailing partial line, if any.
func (l *LogWriterCtx) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) > 0 {
		l.line(string(l.pending))
		l.pending = nil
	}
}

func (l *LogWriterCtx) line(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	l.logger.Warn().Msg(line)

	if l.limit > 0 {
		l.lines = append(l.lines, line)
		if len(l.lines) > l.limit {
			l.lines = l.lines[len(l.lines)-l.limit:]
		}
	}
}

// Tail returns the retained lines, oldest first.
func (l *LogWriterCtx) Tail() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
