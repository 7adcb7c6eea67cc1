package handler

import (
	"fmt"
	"strings"
	"sync"
)

// MockHandlerLogger records log lines so tests can assert on what was logged.
type MockHandlerLogger struct {
	mu    sync.Mutex
	lines []string
}

func NewMockHandlerLogger() *MockHandlerLogger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) record(level, msg string, fields ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, fields))
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{}) {
	l.record("INFO", msg, fields...)
}

func (l *MockHandlerLogger) Debug(msg string, fields ...interface{}) {
	l.record("DEBUG", msg, fields...)
}

func (l *MockHandlerLogger) Warn(msg string, fields ...interface{}) {
	l.record("WARN", msg, fields...)
}

func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {
	l.record("ERROR", msg, append([]interface{}{"error", err}, fields...)...)
}

// Joined returns every recorded line separated by newlines.
func (l *MockHandlerLogger) Joined() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}
