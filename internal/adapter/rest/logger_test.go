package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/inspection-sync/internal/adapter/rest"
)

func TestRedactToken(t *testing.T) {
	logger := rest.NewDefaultLogger(rest.LogLevelInfo, rest.LogFormatHuman, true)

	testCases := []struct {
		name  string
		token string
		want  string
	}{
		{"long token keeps last 4", "ghp_abcdef123456", "[REDACTED-3456]"},
		{"short token fully redacted", "abcd", "[REDACTED]"},
		{"empty token fully redacted", "", "[REDACTED]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, logger.RedactToken(tc.token))
		})
	}
}

func TestRedactToken_Disabled(t *testing.T) {
	logger := rest.NewDefaultLogger(rest.LogLevelInfo, rest.LogFormatHuman, false)

	assert.Equal(t, "ghp_secret", logger.RedactToken("ghp_secret"))
}

func TestLogWarning_JSON(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := rest.NewDefaultLogger(rest.LogLevelInfo, rest.LogFormatJSON, true)
	logger.LogWarning(context.Background(), "failed to record issue action", map[string]interface{}{
		"runID": "run-123",
		"error": "database connection failed",
	})

	output := buf.String()
	jsonStart := strings.Index(output, "{")
	require.NotEqual(t, -1, jsonStart, "Should contain JSON")

	var logData map[string]interface{}
	err := json.Unmarshal([]byte(output[jsonStart:]), &logData)
	require.NoError(t, err)

	assert.Equal(t, "warning", logData["level"])
	assert.Equal(t, "failed to record issue action", logData["message"])
	assert.Equal(t, "run-123", logData["runID"])
	assert.Equal(t, "database connection failed", logData["error"])
	assert.Contains(t, logData, "timestamp")
}

func TestLogInfo_Human(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := rest.NewDefaultLogger(rest.LogLevelInfo, rest.LogFormatHuman, true)
	logger.LogInfo(context.Background(), "reconciliation complete", map[string]interface{}{
		"branch":     "main",
		"categories": 3,
	})

	output := buf.String()
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "reconciliation complete")
	assert.Contains(t, output, "branch=main")
	assert.Contains(t, output, "categories=3")
}

func TestLogInfo_RespectsErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := rest.NewDefaultLogger(rest.LogLevelError, rest.LogFormatHuman, true)
	logger.LogInfo(context.Background(), "should not appear", nil)
	logger.LogWarning(context.Background(), "also silent", nil)

	assert.Empty(t, buf.String())
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "authentication error", rest.ErrTypeAuthentication.String())
	assert.Equal(t, "rate limit exceeded", rest.ErrTypeRateLimit.String())
	assert.Equal(t, "service unavailable", rest.ErrTypeServiceUnavailable.String())
	assert.Equal(t, "invalid request", rest.ErrTypeInvalidRequest.String())
	assert.Equal(t, "timeout", rest.ErrTypeTimeout.String())
	assert.Equal(t, "unknown error", rest.ErrTypeUnknown.String())
}
