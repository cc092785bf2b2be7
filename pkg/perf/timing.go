// Package perf is an opt-in wall-clock tracer for render hot paths.
// It stays dormant unless ZJ_SIDEBAR_PERF=1 is set, so the calls can be
// left in shipping code.
package perf

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const logPath = "/tmp/zj-sidebar-perf.log"

var (
	mu   sync.Mutex
	sink *os.File
	once sync.Once
)

func out() *os.File {
	once.Do(func() {
		if os.Getenv("ZJ_SIDEBAR_PERF") != "1" {
			return
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			sink = f
		}
	})
	return sink
}

// Enabled reports whether tracing is active for this process.
func Enabled() bool { return out() != nil }

// Span times a named operation. Use with defer:
//
//	defer perf.Span("render")()
func Span(name string) func() {
	if out() == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		Log("%s: %v", name, time.Since(start))
	}
}

// Log writes one line to the trace file; a no-op when tracing is off.
func Log(format string, args ...any) {
	f := out()
	if f == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(f, "%s: ", time.Now().Format("15:04:05.000"))
	fmt.Fprintf(f, format+"\n", args...)
}
