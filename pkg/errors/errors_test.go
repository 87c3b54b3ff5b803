package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineErrorUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewServiceError("export failed", "postgres", "insert", cause)

	assert.Equal(t, "export failed: connection refused", err.Error())
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, CodeService, err.Code)
}

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		status      int
		rateLimited bool
		serverSide  bool
	}{
		{status: 0, serverSide: true},
		{status: 400},
		{status: 401},
		{status: 429, rateLimited: true, serverSide: true},
		{status: 502, serverSide: true},
	}

	for _, tt := range tests {
		err := NewAPIError("completion failed", "openai/gpt-4.1-mini", tt.status, nil)
		assert.Equal(t, tt.rateLimited, err.IsRateLimited(), "status %d", tt.status)
		assert.Equal(t, tt.serverSide, err.IsServerSide(), "status %d", tt.status)
	}
}

func TestParseErrorAs(t *testing.T) {
	var wrapped error = NewParseError(ParseStageExtract, "no JSON structure found", "hello", nil)

	var parseErr *ParseError
	require.True(t, stderrors.As(wrapped, &parseErr))
	assert.Equal(t, ParseStageExtract, parseErr.Stage)
	assert.Equal(t, "hello", parseErr.Raw)
	assert.Equal(t, "no JSON structure found", parseErr.Error())
}
