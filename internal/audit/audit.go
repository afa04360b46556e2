// Package audit is the append-only, human-readable trail of every mutating
// action. It is separate from per-task history and is never parsed back in.
package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink receives one line per audit event.
type Sink interface {
	Record(message string) error
	// Reset discards every previous line. Only purge uses it.
	Reset() error
}

// Log is a file-backed Sink. Each line is "<RFC3339 time>\t<message>".
type Log struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	logger  *zap.Logger
	lastErr error
}

// Open opens (creating if needed) the audit file at path in append mode.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit dir: %w", err)
	}
	l := &Log{path: path}
	if err := l.open(os.O_APPEND); err != nil {
		return nil, err
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:    "ts",
		MessageKey: "msg",
		EncodeTime: zapcore.RFC3339TimeEncoder,
		LineEnding: zapcore.DefaultLineEnding,
	})
	core := zapcore.NewCore(encoder, zapcore.AddSync(writerFunc(l.write)), zapcore.InfoLevel)
	l.logger = zap.New(core, zap.ErrorOutput(zapcore.AddSync(io.Discard)))
	return l, nil
}

func (l *Log) open(mode int) error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log %s: %w", l.path, err)
	}
	l.file = file
	return nil
}

func (l *Log) write(p []byte) (int, error) {
	n, err := l.file.Write(p)
	if err != nil {
		l.lastErr = err
	}
	return n, err
}

// Record appends message as a single line. Embedded newlines are escaped.
func (l *Log) Record(message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastErr = nil
	l.logger.Info(singleLine(message))
	if l.lastErr != nil {
		return fmt.Errorf("failed to write audit log: %w", l.lastErr)
	}
	return nil
}

// Recordf is Record with fmt.Sprintf formatting.
func Recordf(s Sink, format string, args ...any) error {
	return s.Record(fmt.Sprintf(format, args...))
}

func (l *Log) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log: %w", err)
	}
	return l.open(os.O_TRUNC | os.O_APPEND)
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.logger.Sync()
	return l.file.Close()
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", `\r`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// Memory is an in-process Sink, used where no file is wanted.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, singleLine(message))
	return nil
}

func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	return nil
}

// Lines returns a copy of every recorded message in order.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}
