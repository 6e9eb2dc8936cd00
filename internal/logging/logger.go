package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a config string to a Level. Unknown values resolve to
// info rather than failing startup.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger emits one JSON object per entry with ts, level, msg and any bound
// fields flattened into the top level.
type Logger struct {
	mu   sync.Mutex
	out  io.Writer
	min  Level
	base map[string]interface{}
}

func New() *Logger {
	return &Logger{out: os.Stdout, min: LevelInfo}
}

func (l *Logger) SetOutput(w io.Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	return l
}

func (l *Logger) SetLevel(level Level) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.min = level
	return l
}

// WithField returns a child logger that carries an extra field on every
// entry. The parent is not modified.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.base)+len(fields))
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{out: l.out, min: l.min, base: merged}
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.emit(LevelDebug, msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.emit(LevelInfo, msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.emit(LevelWarn, msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.emit(LevelError, msg, fields)
}

func (l *Logger) emit(level Level, msg string, extra []map[string]interface{}) {
	if level < l.min {
		return
	}

	entry := make(map[string]interface{}, len(l.base)+4)
	for k, v := range l.base {
		entry[k] = v
	}
	for _, fields := range extra {
		for k, v := range fields {
			entry[k] = v
		}
	}
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	line, err := json.Marshal(entry)
	if err != nil {
		// A field that cannot marshal should not silence the entry.
		line = []byte(`{"level":"error","msg":"unencodable log entry"}`)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(line)
}

// Default is the process-wide logger, used before wiring completes.
var Default = New()

func Error(msg string, fields ...map[string]interface{}) {
	Default.Error(msg, fields...)
}
