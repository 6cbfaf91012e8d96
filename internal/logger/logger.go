// Package logger provides verbose diagnostics for far-search.
// Output is off unless verbose mode is enabled. The TUI redirects it to a
// file because the terminal belongs to bubbletea.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the writer for log lines. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// OpenFile points the logger at path (appending) and returns a close func.
// An empty path discards output.
func OpenFile(path string) (func() error, error) {
	if path == "" {
		SetOutput(io.Discard)
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetOutput(f)
	return f.Close, nil
}

func Debug(format string, args ...any) {
	write("[DEBUG] ", format, args...)
}

func Info(format string, args ...any) {
	write("[INFO] ", format, args...)
}

func Warn(format string, args ...any) {
	write("[WARN] ", format, args...)
}

// Section prints a section header.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func write(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}
