// logger.go provides file-based logging for ALL LLM interactions.
//
// Logs are written to ~/.askdb/logs/llm.log with timestamps. Every prompt
// and every response (or error) is recorded so generated SQL can be
// audited after the fact.
package ai

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logOnce sync.Once
	logMu   sync.Mutex
	logFile *os.File
)

// initLog opens (or creates) the log file. Called once lazily.
func initLog() {
	logOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return
		}
		logDir := filepath.Join(homeDir, ".askdb", "logs")
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return
		}
		logPath := filepath.Join(logDir, "llm.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return
		}
		logFile = f
	})
}

func logWrite(s string) {
	initLog()
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		logFile.WriteString(s) //nolint:errcheck
	}
}

// LogRequest records an outgoing prompt.
func LogRequest(operation, provider, prompt string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	logWrite(fmt.Sprintf(
		"\n[%s] REQUEST  op=%s provider=%s\n%s\n────────────────────────────────────────\n",
		ts, operation, provider, prompt,
	))
}

// LogResponse records a response or the error that replaced it.
func LogResponse(operation, provider, response string, err error) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	status := "(ok)"
	if err != nil {
		status = "error: " + err.Error()
	}
	logWrite(fmt.Sprintf(
		"[%s] RESPONSE op=%s provider=%s %s\n%s\n────────────────────────────────────────\n",
		ts, operation, provider, status, response,
	))
}
