package pantryfinder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// SessionLogger is the interface for recipe-discovery session logging.
type SessionLogger interface {
	LogAttempt(attempt AttemptLog) error
}

// NewSessionLogFilePath returns a file path keyed to a household so logs from
// different tenants stay apart.
func NewSessionLogFilePath(householdID string) string {
	return fmt.Sprintf("./logs/%d.%s.json", time.Now().Unix(), householdID)
}

// AttemptLog captures a single search attempt within a discovery session.
type AttemptLog struct {
	Attempt     int       `json:"attempt"`
	Timestamp   time.Time `json:"timestamp"`
	Strategy    string    `json:"strategy,omitempty"`
	Query       string    `json:"query,omitempty"`
	SearchPage  int       `json:"search_page"`
	ResultCount int       `json:"result_count"`
	NewRecipes  int       `json:"new_recipes"`
	Accumulated int       `json:"accumulated"`
	Error       string    `json:"error,omitempty"`
}

// FileSessionLogger logs to a file, accumulating attempts and flushing at the end.
type FileSessionLogger struct {
	attempts []AttemptLog
	writer   io.Writer
}

// NewFileSessionLogger creates a new file-based session logger.
func NewFileSessionLogger(writer io.Writer) *FileSessionLogger {
	return &FileSessionLogger{
		attempts: make([]AttemptLog, 0),
		writer:   writer,
	}
}

// LogAttempt logs an attempt to the buffer (does not flush immediately).
func (fsl *FileSessionLogger) LogAttempt(attempt AttemptLog) error {
	fsl.attempts = append(fsl.attempts, attempt)
	return nil
}

// Flush flushes all accumulated attempts to the writer.
func (fsl *FileSessionLogger) Flush() error {
	if fsl.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"discovery_session": map[string]any{
			"timestamp": time.Now(),
			"attempts":  fsl.attempts,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session log: %w", err)
	}

	if _, err := fsl.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write session log: %w", err)
	}

	// Clear the buffer after successful write
	fsl.attempts = fsl.attempts[:0]
	return nil
}

// NoOpSessionLogger is a logger that discards all log entries.
type NoOpSessionLogger struct{}

// NewNoOpSessionLogger creates a new no-op session logger.
func NewNoOpSessionLogger() *NoOpSessionLogger {
	return &NoOpSessionLogger{}
}

// LogAttempt discards the attempt log (no-op).
func (nop *NoOpSessionLogger) LogAttempt(attempt AttemptLog) error {
	return nil
}

// StdoutSessionLogger logs each attempt as a JSON line to stdout (for Lambda/CloudWatch).
type StdoutSessionLogger struct{}

// NewStdoutSessionLogger creates a new stdout-based session logger.
func NewStdoutSessionLogger() *StdoutSessionLogger {
	return &StdoutSessionLogger{}
}

// LogAttempt writes the attempt as a JSON line to os.Stdout.
func (l *StdoutSessionLogger) LogAttempt(attempt AttemptLog) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
