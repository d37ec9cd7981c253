package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TranscriptLogger writes a per-session plain-text transcript alongside the
// structured logs, one file per session. Useful for reviewing full tutoring
// conversations after the fact.
type TranscriptLogger struct {
	sessionID string
	logFile   *os.File
	mutex     sync.Mutex
	startTime time.Time
}

// StartTranscript creates the transcript file for a session under dir.
func StartTranscript(dir, sessionID string) (*TranscriptLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(dir, fmt.Sprintf("session_%s_%s.log", sessionID, timestamp))

	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}

	t := &TranscriptLogger{
		sessionID: sessionID,
		logFile:   logFile,
		startTime: time.Now(),
	}
	t.Log("=== Session %s started at %s ===", sessionID, t.startTime.Format(time.RFC3339))
	return t, nil
}

// Log appends one timestamped line to the transcript.
func (t *TranscriptLogger) Log(format string, args ...interface{}) {
	if t == nil {
		return
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	elapsed := time.Since(t.startTime).Round(time.Millisecond)
	fmt.Fprintf(t.logFile, "[%s] [+%v] %s\n", timestamp, elapsed, fmt.Sprintf(format, args...))
	t.logFile.Sync()
}

// LogMessage records one conversation message with its role.
func (t *TranscriptLogger) LogMessage(role, content string) {
	t.Log("%-12s %s", role+":", content)
}

// LogThought records the dialogue model's internal rationale.
func (t *TranscriptLogger) LogThought(thought string) {
	if thought == "" {
		return
	}
	t.Log("%-12s %s", "thought:", thought)
}

// Close finalizes the transcript file.
func (t *TranscriptLogger) Close() error {
	if t == nil || t.logFile == nil {
		return nil
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	fmt.Fprintf(t.logFile, "[%s] === Session %s closed after %v ===\n",
		time.Now().Format("15:04:05.000"), t.sessionID, time.Since(t.startTime).Round(time.Millisecond))
	err := t.logFile.Close()
	t.logFile = nil
	return err
}
