package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Logger is the logging surface the pipeline uses. Per-frame paths
// (not-ready skips, fast-path hits) log at debug level only.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Warnings with the same format string repeating inside this window are
// dropped, so a per-frame condition cannot flood the log at display rate.
const warnThrottle = time.Second

// DefaultLogger writes leveled, prefixed lines through the stdlib logger.
type DefaultLogger struct {
	mu       sync.Mutex
	debug    bool
	prefix   string
	out      *log.Logger
	err      *log.Logger
	lastWarn map[string]time.Time
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLoggerTo(os.Stdout, os.Stderr, prefix, debug)
}

// NewLoggerTo directs info/debug lines to out and warn/error lines to errw.
func NewLoggerTo(out, errw io.Writer, prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:    debug,
		prefix:   prefix,
		out:      log.New(out, "", flags),
		err:      log.New(errw, "", flags),
		lastWarn: make(map[string]time.Time),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) line(level, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return level + ": " + msg
	}
	return "[" + l.prefix + "] " + level + ": " + msg
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print(l.line("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.line("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	now := time.Now()
	if last, ok := l.lastWarn[format]; ok && now.Sub(last) < warnThrottle {
		l.mu.Unlock()
		return
	}
	l.lastWarn[format] = now
	l.mu.Unlock()
	l.err.Print(l.line("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.line("ERROR", format, args...))
}

type nopLogger struct{}

// NewNopLogger returns a logger that discards everything. Useful in tests.
func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
