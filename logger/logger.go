// Package logger provides thread-safe, leveled, and periodic logging. It is
// adapted from the teacher's AIS-ingestion logger into the build tool's
// progress-reporting channel: the same Compose/Log/periodic machinery now
// reports builder oracle-call counts and leaf counts instead of AIS
// connection statistics.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// log message importance
const (
	Debug   int = 9 // temporary or possibly interesting
	Info    int = 7 // interesting
	Warning int = 5 // temporary or client error
	Error   int = 3 // permanent degradation
	Fatal   int = 1 // irrecoverable error
)

// fatalExitCode is the code Logger will abort the process with if a fatal-level message is printed
const fatalExitCode int = 3

// Logger is a utility for thread-safe and periodic logging.
// Use .Log() or one of its wrappers for issues that can be caught as they happen,
// AddPeriodic for statistics.
// Use .Compose() to make sure multi-statement messages get written as one.
// Should not be dereferenced or moved as it contains mutexes.
type Logger struct {
	writeTo   io.WriteCloser
	writeLock sync.Mutex
	Treshold  int
	p         periodic

	// latest progress snapshot, written by ReportProgress and read back by
	// the periodic logger registered in StartProgressLogging.
	progressCalls  int64
	progressLeaves int64
}

const progressPeriodicID = "build-progress"

// NewLogger creates a new logger with a minimum importance level.
// Loggers should not be nested.
func NewLogger(writeTo io.WriteCloser, level int) *Logger {
	l := &Logger{
		writeTo:  writeTo,
		Treshold: level,
		p:        newPeriodic(),
	}
	go periodicRunner(l)
	return l
}

// Close the underlying Writer and stop the periodic runner.
func (l *Logger) Close() {
	l.p.Close()
	l.writeLock.Lock()
	_ = l.writeTo.Close()
	l.writeTo = nil
	l.writeLock.Unlock()
}

func (l *Logger) prefixMessage(level int) {
	if l.Treshold < Debug {
		fmt.Fprint(l.writeTo, time.Now().Format("2006-01-02 15:04:05: "))
	}
	if level == Warning {
		fmt.Fprint(l.writeTo, "WARNING: ")
	} else if level == Error {
		fmt.Fprint(l.writeTo, "ERROR: ")
	} else if level == Fatal && l.Treshold != Debug {
		fmt.Fprint(l.writeTo, "FATAL: ")
	}
}

// Compose allows holding the lock between multiple print
func (l *Logger) Compose(level int) Composer {
	c := Composer{
		level:    level,
		writeTo:  nil,
		heldLock: nil,
	}
	if level <= l.Treshold {
		c.writeTo = l.writeTo
		c.heldLock = &l.writeLock
		l.writeLock.Lock()
		l.prefixMessage(level)
	}
	return c
}

// Log writes the message if it passes the logger's importance treshold
func (l *Logger) Log(level int, format string, args ...interface{}) {
	if level <= l.Treshold {
		l.writeLock.Lock()
		defer l.writeLock.Unlock()
		l.prefixMessage(level)
		if len(args) == 0 {
			fmt.Fprint(l.writeTo, format)
		} else {
			fmt.Fprintf(l.writeTo, format, args...)
		}
		fmt.Fprintln(l.writeTo)
		if level == Fatal {
			os.Exit(fatalExitCode)
		}
	}
}

// Wrappers around Log()

func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(Debug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(Info, format, args...)
}

func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(Warning, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(Error, format, args...)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.Log(Fatal, format, args...)
}

// ReportProgress implements quadtree.ProgressSink without this package
// importing quadtree: the builder only needs something with these methods.
// It only records the latest snapshot; StartProgressLogging is what
// actually emits it, on its own schedule, so a high-frequency builder
// doesn't flood the log.
func (l *Logger) ReportProgress(oracleCalls int64, leaves int) {
	atomic.StoreInt64(&l.progressCalls, oracleCalls)
	atomic.StoreInt64(&l.progressLeaves, int64(leaves))
}

// StartProgressLogging registers a periodic logger that emits the latest
// ReportProgress snapshot on a backoff schedule growing from minInterval to
// maxInterval. Call StopProgressLogging when the build finishes.
func (l *Logger) StartProgressLogging(minInterval, maxInterval time.Duration) {
	l.AddPeriodic(progressPeriodicID, minInterval, maxInterval, func(c *Composer, sinceLast time.Duration) {
		calls := atomic.LoadInt64(&l.progressCalls)
		leaves := atomic.LoadInt64(&l.progressLeaves)
		c.Writeln("build progress: %s oracle calls, %d leaves so far", SiMultiple(uint64(calls), 1000, 'Y'), leaves)
	})
}

// StopProgressLogging removes the periodic logger started by
// StartProgressLogging.
func (l *Logger) StopProgressLogging() {
	l.RemovePeriodic(progressPeriodicID)
}

// Composer lets you split a long message into multiple write statements
// End the message by calling Finish() or Close()
type Composer struct {
	level    int       // Only used for Fatal
	writeTo  io.Writer // nil if level is ignored
	heldLock *sync.Mutex
}

// Write writes formatted text without a newline
func (l *Composer) Write(format string, args ...interface{}) {
	if l.writeTo != nil {
		if len(args) == 0 {
			fmt.Fprint(l.writeTo, format)
		} else {
			fmt.Fprintf(l.writeTo, format, args...)
		}
	}
}

// Writeln writes a formatted string plus a newline.
func (l *Composer) Writeln(format string, args ...interface{}) {
	if l.writeTo != nil {
		if len(args) == 0 {
			fmt.Fprint(l.writeTo, format)
		} else {
			fmt.Fprintf(l.writeTo, format, args...)
		}
		fmt.Fprintln(l.writeTo)
	}
}

// Finish writes a formatted line and then closes the composer.
func (l *Composer) Finish(format string, args ...interface{}) {
	l.Write(format, args...)
	l.Close()
}

// Close releases the mutex on the logger and exits the process for `Fatal` errors.
func (l *Composer) Close() {
	if l.writeTo != nil {
		fmt.Fprintln(l.writeTo)
		l.heldLock.Unlock()
		if l.level == Fatal {
			os.Exit(fatalExitCode)
		}
		l.writeTo = nil
	}
}

