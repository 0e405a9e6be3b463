package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Logger provides structured logging for REST API calls.
type Logger interface {
	// LogRequest logs an outgoing API request (token redacted)
	LogRequest(ctx context.Context, req RequestLog)

	// LogResponse logs an API response with timing info
	LogResponse(ctx context.Context, resp ResponseLog)

	// LogError logs an API error
	LogError(ctx context.Context, err ErrorLog)

	// LogWarning logs a warning message with structured fields
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogInfo logs an informational message with structured fields
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}

// RequestLog contains request information for logging.
type RequestLog struct {
	Service   string
	Method    string
	Path      string
	Timestamp time.Time
	BodyBytes int    // Size of the request body
	Token     string // Will be redacted to last 4 chars
}

// ResponseLog contains response information for logging.
type ResponseLog struct {
	Service    string
	Method     string
	Path       string
	Timestamp  time.Time
	Duration   time.Duration
	StatusCode int
}

// ErrorLog contains error information for logging.
type ErrorLog struct {
	Service    string
	Method     string
	Path       string
	Timestamp  time.Time
	Duration   time.Duration
	Error      error
	ErrorType  ErrorType
	StatusCode int
	Retryable  bool
}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// DefaultLogger writes logs in structured format to stdout.
type DefaultLogger struct {
	level       LogLevel
	redactToken bool
	format      LogFormat
}

// NewDefaultLogger creates a logger with the specified config.
func NewDefaultLogger(level LogLevel, format LogFormat, redactToken bool) *DefaultLogger {
	return &DefaultLogger{
		level:       level,
		redactToken: redactToken,
		format:      format,
	}
}

// SetRedaction enables or disables token redaction.
func (l *DefaultLogger) SetRedaction(enabled bool) {
	l.redactToken = enabled
}

// LogRequest logs an API request.
func (l *DefaultLogger) LogRequest(ctx context.Context, req RequestLog) {
	if l.level > LogLevelDebug {
		return
	}

	redacted := l.RedactToken(req.Token)

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"debug","type":"request","service":"%s","method":"%s","path":"%s","timestamp":"%s","body_bytes":%d,"token":"%s"}`,
			req.Service, req.Method, req.Path, req.Timestamp.Format(time.RFC3339),
			req.BodyBytes, redacted)
	} else {
		log.Printf("[DEBUG] %s: %s %s (body=%d bytes, token=%s)",
			req.Service, req.Method, req.Path, req.BodyBytes, redacted)
	}
}

// LogResponse logs an API response.
func (l *DefaultLogger) LogResponse(ctx context.Context, resp ResponseLog) {
	if l.level > LogLevelInfo {
		return
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"info","type":"response","service":"%s","method":"%s","path":"%s","timestamp":"%s","duration_ms":%d,"status_code":%d}`,
			resp.Service, resp.Method, resp.Path, resp.Timestamp.Format(time.RFC3339),
			resp.Duration.Milliseconds(), resp.StatusCode)
	} else {
		log.Printf("[INFO] %s: %s %s -> %d (duration=%.1fs)",
			resp.Service, resp.Method, resp.Path, resp.StatusCode, resp.Duration.Seconds())
	}
}

// LogError logs an API error.
func (l *DefaultLogger) LogError(ctx context.Context, err ErrorLog) {
	if l.level > LogLevelError {
		return
	}

	retryableStr := "non-retryable"
	if err.Retryable {
		retryableStr = "retryable"
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"error","type":"error","service":"%s","method":"%s","path":"%s","timestamp":"%s","duration_ms":%d,"error":"%s","error_type":%d,"status_code":%d,"retryable":%t}`,
			err.Service, err.Method, err.Path, err.Timestamp.Format(time.RFC3339),
			err.Duration.Milliseconds(), err.Error.Error(), err.ErrorType,
			err.StatusCode, err.Retryable)
	} else {
		log.Printf("[ERROR] %s: %s %s failed (status=%d, %s): %v",
			err.Service, err.Method, err.Path, err.StatusCode, retryableStr, err.Error)
	}
}

// LogWarning logs a warning message with structured fields.
func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.logStructured("warning", "[WARN]", message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.logStructured("info", "[INFO]", message, fields)
}

func (l *DefaultLogger) logStructured(level, humanPrefix, message string, fields map[string]interface{}) {
	if l.format == LogFormatJSON {
		entry := map[string]interface{}{
			"level":     level,
			"message":   message,
			"timestamp": time.Now().Format(time.RFC3339),
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf(`{"level":"%s","message":"%s"}`, level, message)
			return
		}
		log.Print(string(data))
	} else {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
		}
		if len(parts) == 0 {
			log.Printf("%s %s", humanPrefix, message)
			return
		}
		log.Printf("%s %s (%s)", humanPrefix, message, strings.Join(parts, ", "))
	}
}

// RedactToken shows only the last 4 characters of a token with explicit
// redaction markers.
func (l *DefaultLogger) RedactToken(token string) string {
	if !l.redactToken {
		return token
	}
	if len(token) <= 4 {
		return "[REDACTED]"
	}
	return fmt.Sprintf("[REDACTED-%s]", token[len(token)-4:])
}
