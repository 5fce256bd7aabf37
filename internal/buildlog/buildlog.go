// Package buildlog renders resolver, classpath, and compiler progress to
// the terminal. It follows the teacher's BuildLog/TaskLog split: a Log owns
// overall pass/fail state and timing, Task instances report individual
// steps within it (one for dependency resolution as a whole, one per
// compile invocation, one for jar packaging, and so on).
package buildlog

import (
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
)

// Task reports the outcome of a single unit of work (dependency
// resolution, a compile invocation, jar packaging) started under a Log.
type Task interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Done(err error) bool
}

// Log owns the overall warning/error tally and start time for one jargo
// command invocation.
type Log struct {
	startTime  time.Time
	warnCount  int
	errorCount int
}

type task struct {
	log       *Log
	startTime time.Time
	name      string
}

// New starts a fresh build log and prints the opening banner.
func New() *Log {
	l := &Log{startTime: time.Now()}
	pterm.DefaultHeader.Println("Jargo")
	return l
}

// Stage prints a section header for a named phase (Resolve, Compile, Jar).
func (l *Log) Stage(name string) {
	fmt.Printf("  %s\n", name)
}

// CheckError reports err (if non-nil) under task and returns whether the
// caller should abort. Mirrors the teacher's CheckError shortcut for
// single-step operations that don't need their own Task lifecycle.
func (l *Log) CheckError(task string, err error) bool {
	if err == nil {
		return false
	}
	l.errorCount++
	pterm.Error.Printf("ERROR %s: %s\n", task, err)
	return true
}

// Failed reports whether any error has been recorded so far.
func (l *Log) Failed() bool { return l.errorCount > 0 }

// Start begins timing a named task and returns a handle for reporting its
// outcome.
func (l *Log) Start(name string) Task {
	return &task{log: l, startTime: time.Now(), name: name}
}

// Finish prints the closing summary and exits the process with status 1 if
// any error was recorded, matching the teacher's BuildFinish behavior.
func (l *Log) Finish() {
	elapsed := time.Since(l.startTime).Seconds()
	result := "completed"
	if l.errorCount > 0 {
		result = "FAILED"
	}
	msg := fmt.Sprintf("%s in %.1fs (%d warnings, %d errors)", result, elapsed, l.warnCount, l.errorCount)
	if l.errorCount > 0 {
		pterm.Error.Println(msg)
		os.Exit(1)
	}
	pterm.Success.Println(msg)
}

func (t *task) Info(msg string) { pterm.Info.Println(msg) }

func (t *task) Warn(msg string) {
	t.log.warnCount++
	pterm.Warning.Println(msg)
}

func (t *task) Error(msg string) {
	t.log.errorCount++
	pterm.Error.Println(msg)
}

func (t *task) Done(err error) bool {
	elapsed := time.Since(t.startTime).Seconds()
	if err != nil {
		t.log.errorCount++
		pterm.Error.Printf("  x %s FAILED (%.1fs)\n", t.name, elapsed)
		pterm.Error.Printf("    cause: %s\n", err)
		return true
	}
	pterm.Success.Printf("  - %s (%.1fs)\n", t.name, elapsed)
	return false
}
