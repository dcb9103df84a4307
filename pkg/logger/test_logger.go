package logger

import (
	"strings"
	"sync"
)

// TestLogger is a Logger implementation for tests that captures all
// messages instead of writing them anywhere. Loggers derived via
// WithField/WithFields record into the root logger's message list.
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	fields   map[string]interface{}
	root     *TestLogger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	return &TestLogger{
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	sink := l
	if l.root != nil {
		sink = l.root
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.messages = append(sink.messages, LogMessage{Level: level, Message: msg, Fields: merged})
}

func (l *TestLogger) Debug(msg string) { l.record("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.record("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.record("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.record("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("ERROR", msg, fields)
}

// WithField returns a logger that includes the field on every message
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger that includes the fields on every message
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	child := &TestLogger{
		fields: make(map[string]interface{}, len(l.fields)+len(fields)),
		root:   l,
	}
	if l.root != nil {
		child.root = l.root
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

// WithError returns a logger that includes the error on every message
func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// Messages returns a copy of the captured messages
func (l *TestLogger) Messages() []LogMessage {
	sink := l
	if l.root != nil {
		sink = l.root
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	out := make([]LogMessage, len(sink.messages))
	copy(out, sink.messages)
	return out
}

// HasMessage reports whether any captured message at the given level
// contains the substring.
func (l *TestLogger) HasMessage(level, substr string) bool {
	for _, m := range l.Messages() {
		if m.Level == level && strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

// Clear drops all captured messages
func (l *TestLogger) Clear() {
	sink := l
	if l.root != nil {
		sink = l.root
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.messages = nil
}
