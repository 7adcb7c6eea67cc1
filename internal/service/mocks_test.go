package service

import (
	"context"
	"io"
	"strings"
	"sync"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) record(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.record("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	line := "ERROR: " + msg
	if err != nil {
		line += " - " + err.Error()
	}
	m.record(line)
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.record("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.record("WARN: " + msg)
}

func (m *MockLogger) Joined() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.messages, "\n")
}

// MockTextGenerator records prompts and replays a canned response.
type MockTextGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	// block, when set, waits for ctx cancellation before returning.
	block bool
}

func NewMockTextGenerator(response string, err error) *MockTextGenerator {
	return &MockTextGenerator{response: response, err: err}
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.response, m.err
}

func (m *MockTextGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

type MockStorageService struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func NewMockStorageService() *MockStorageService {
	return &MockStorageService{
		files: make(map[string][]byte),
	}
}

func (m *MockStorageService) Upload(ctx context.Context, path string, file io.Reader) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.files[path] = data
	m.mu.Unlock()
	return nil
}
