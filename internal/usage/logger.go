package usage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogEntry records one completed or failed request cycle. Failed cycles
// carry the error text; that is the diagnostic trail for errors surfaced
// in the transcript.
type LogEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	Error        string    `json:"error,omitempty"`
}

// Logger writes entries to daily JSONL files
type Logger struct {
	baseDir string
	mu      sync.Mutex
}

var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
)

// DefaultLogger returns the singleton logger instance
func DefaultLogger() *Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLogger()
	})
	return defaultLogger
}

// NewLogger creates a new Logger with the default XDG data directory
func NewLogger() *Logger {
	return NewLoggerAt(getUsageDir())
}

// NewLoggerAt creates a Logger writing under the given directory.
func NewLoggerAt(dir string) *Logger {
	return &Logger{baseDir: dir}
}

// Log writes an entry to the appropriate daily file
func (l *Logger) Log(entry LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Ensure directory exists
	if err := os.MkdirAll(l.baseDir, 0755); err != nil {
		return err
	}

	// Determine filename based on date
	date := entry.Timestamp.Format("2006-01-02")
	filename := filepath.Join(l.baseDir, date+".jsonl")

	// Open file for appending
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	// Write JSON line
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.WriteString("\n"); err != nil {
		return err
	}
	return w.Flush()
}

// getUsageDir returns the XDG data directory for ysbot usage logs
func getUsageDir() string {
	// Check XDG_DATA_HOME first
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "ysbot", "usage")
	}

	// Default to ~/.local/share/ysbot/usage
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home not available
		return filepath.Join(".", ".ysbot", "usage")
	}

	return filepath.Join(homeDir, ".local", "share", "ysbot", "usage")
}
