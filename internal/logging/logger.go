// Package logging provides a small levelled logger shared by the
// simulation pipeline. Recoverable instrumentation failures log at WARN
// and the run continues; fatal conditions propagate as errors instead of
// being logged here.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// Logger is a concurrency-safe levelled logger over the standard library
// logger. Instances are passed explicitly; there is no package singleton.
type Logger struct {
	mu    sync.Mutex
	level Level
	inner *log.Logger
}

func New(w io.Writer, minLevel Level) *Logger {
	return &Logger{
		level: minLevel,
		inner: log.New(w, "", 0),
	}
}

// Default returns a stdout logger at INFO.
func Default() *Logger {
	return New(os.Stdout, Info)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return New(io.Discard, Error+1)
}

func (l *Logger) SetLevel(lvl Level) {
	l.mu.Lock()
	l.level = lvl
	l.mu.Unlock()
}

func (l *Logger) log(lvl Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl < l.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.inner.Printf("[%s] %s  %s", lvl, ts, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(f string, a ...any) { l.log(Debug, f, a...) }
func (l *Logger) Infof(f string, a ...any)  { l.log(Info, f, a...) }
func (l *Logger) Warnf(f string, a ...any)  { l.log(Warn, f, a...) }
func (l *Logger) Errorf(f string, a ...any) { l.log(Error, f, a...) }
