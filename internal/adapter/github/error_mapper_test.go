package github_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/inspection-sync/internal/adapter/github"
	"github.com/bkyoung/inspection-sync/internal/adapter/rest"
)

func TestMapHTTPError(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
		wantType   rest.ErrorType
		retryable  bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Bad credentials"}`, rest.ErrTypeAuthentication, false},
		{"forbidden", http.StatusForbidden, `{"message":"Forbidden"}`, rest.ErrTypeAuthentication, false},
		{"rate limited", http.StatusTooManyRequests, `{"message":"API rate limit exceeded"}`, rest.ErrTypeRateLimit, true},
		{"not found", http.StatusNotFound, `{"message":"Not Found"}`, rest.ErrTypeInvalidRequest, false},
		{"validation failed", http.StatusUnprocessableEntity, `{"message":"Validation Failed"}`, rest.ErrTypeInvalidRequest, false},
		{"server error", http.StatusInternalServerError, ``, rest.ErrTypeServiceUnavailable, true},
		{"bad gateway", http.StatusBadGateway, ``, rest.ErrTypeServiceUnavailable, true},
		{"teapot", http.StatusTeapot, ``, rest.ErrTypeUnknown, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := github.MapHTTPError(tc.statusCode, []byte(tc.body))

			require.NotNil(t, err)
			assert.Equal(t, tc.wantType, err.Type)
			assert.Equal(t, tc.retryable, err.Retryable)
			assert.Equal(t, tc.statusCode, err.StatusCode)
		})
	}
}

func TestMapHTTPError_IncludesValidationDetails(t *testing.T) {
	body := `{"message":"Validation Failed","errors":[{"field":"title","code":"missing_field"}]}`

	err := github.MapHTTPError(http.StatusUnprocessableEntity, []byte(body))

	assert.Contains(t, err.Message, "Validation Failed")
	assert.Contains(t, err.Message, "title: missing_field")
}

func TestMapHTTPError_NonJSONBody(t *testing.T) {
	err := github.MapHTTPError(http.StatusBadGateway, []byte("<html>bad gateway</html>"))

	assert.Contains(t, err.Message, "HTTP 502")
	assert.Contains(t, err.Message, "bad gateway")
}
