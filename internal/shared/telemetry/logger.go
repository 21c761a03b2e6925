// Package telemetry emits one-line JSON logs. Lambda and container
// runtimes both collect stdout, so a plain writer is the whole
// transport.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects log lines and returns a func restoring the
// previous destination. Tests use it to capture output.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	prev := out
	out = w
	mu.Unlock()
	return func() {
		mu.Lock()
		out = prev
		mu.Unlock()
	}
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) { write("info", msg, fields) }

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) { write("warn", msg, fields) }

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) { write("error", msg, fields) }

// write renders one JSON line. Reserved keys are set after the caller's
// fields so ts, level and msg cannot be spoofed.
func write(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		entry[k] = v
	}
	entry["ts"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = level
	entry["msg"] = msg

	line, err := json.Marshal(entry)

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		fmt.Fprintf(out, `{"ts":%q,"level":"error","msg":"logger marshal failed","err":%q}`+"\n",
			time.Now().UTC().Format(time.RFC3339), err.Error())
		return
	}
	fmt.Fprintf(out, "%s\n", line)
}
