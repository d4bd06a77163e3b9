package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CurlLog appends one shell-replayable curl line per outbound request. A
// nil log (empty path) disables auditing; every method tolerates that.
type CurlLog struct {
	path  string
	file  *os.File
	runID string
}

// NewCurlLog opens (creating if needed) the append-only audit log and
// stamps a run header. An empty path returns a nil, disabled log.
func NewCurlLog(path string) (*CurlLog, error) {
	if path == "" {
		return nil, nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create curl log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open curl log: %w", err)
	}

	log := &CurlLog{
		path:  path,
		file:  file,
		runID: uuid.NewString(),
	}
	log.Append(fmt.Sprintf("# run %s started %s", log.runID, time.Now().Format(time.RFC3339)))
	return log, nil
}

// RunID identifies this run in the log header and the debug stream.
func (l *CurlLog) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// Append writes one line. Failures are swallowed: auditing is best effort
// and must never interrupt the workflow.
func (l *CurlLog) Append(line string) {
	if l == nil || l.file == nil {
		return
	}
	_, _ = l.file.WriteString(line + "\n")
}

func (l *CurlLog) Close() {
	if l == nil || l.file == nil {
		return
	}
	_ = l.file.Close()
}

// quoteForShell single-quotes value for POSIX shells.
func quoteForShell(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

// buildCurlCommand renders a request as an equivalent curl invocation.
// host and content-length are dropped regardless of case: the transport
// recomputes both and replaying stale values would mislead.
func buildCurlCommand(method, url string, headers []HeaderField, body string) string {
	parts := []string{"curl"}

	upperMethod := strings.ToUpper(method)
	if upperMethod != "GET" {
		parts = append(parts, "-X", upperMethod)
	}

	for _, h := range headers {
		lower := strings.ToLower(h.Name)
		if lower == "host" || lower == "content-length" {
			continue
		}
		parts = append(parts, "-H", quoteForShell(h.Name+": "+h.Value))
	}

	if body != "" {
		parts = append(parts, "--data-binary", quoteForShell(body))
	}

	parts = append(parts, quoteForShell(url))
	return strings.Join(parts, " ")
}
