package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amerrors "github.com/mwillard/memoryforge/internal/errors"
)

func TestMapError_NilError(t *testing.T) {
	// Given: nil error
	var err error = nil

	// When: mapping the error
	result := MapError(err)

	// Then: returns nil
	assert.Nil(t, result)
}

func TestMapError_IndexNotFound(t *testing.T) {
	// Given: index not found error
	err := ErrIndexNotFound

	// When: mapping the error
	result := MapError(err)

	// Then: returns correct MCP error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeIndexNotFound, result.Code)
	assert.Contains(t, result.Message, "Index not found")
}

func TestMapError_EmbeddingFailed(t *testing.T) {
	// Given: embedding failed error
	err := ErrEmbeddingFailed

	// When: mapping the error
	result := MapError(err)

	// Then: returns correct MCP error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeEmbeddingFailed, result.Code)
	assert.Contains(t, result.Message, "Embedding")
}

func TestMapError_DeadlineExceeded(t *testing.T) {
	// Given: deadline exceeded error
	err := context.DeadlineExceeded

	// When: mapping the error
	result := MapError(err)

	// Then: returns timeout error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeTimeout, result.Code)
	assert.Contains(t, result.Message, "timed out")
}

func TestMapError_Canceled(t *testing.T) {
	// Given: context canceled error
	err := context.Canceled

	// When: mapping the error
	result := MapError(err)

	// Then: returns timeout error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeTimeout, result.Code)
	assert.Contains(t, result.Message, "canceled")
}

func TestMapError_InvalidParams(t *testing.T) {
	// Given: invalid params error
	err := ErrInvalidParams

	// When: mapping the error
	result := MapError(err)

	// Then: returns invalid params error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeInvalidParams, result.Code)
}

func TestMapError_UnknownError(t *testing.T) {
	// Given: unknown error
	err := errors.New("some unknown error")

	// When: mapping the error
	result := MapError(err)

	// Then: returns internal error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeInternalError, result.Code)
	assert.Contains(t, result.Message, "Internal server error")
}

func TestMapError_WrappedError(t *testing.T) {
	// Given: wrapped index not found error
	err := fmt.Errorf("failed to search: %w", ErrIndexNotFound)

	// When: mapping the error
	result := MapError(err)

	// Then: correctly identifies the wrapped error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeIndexNotFound, result.Code)
}

func TestMCPError_Error(t *testing.T) {
	// Given: an MCP error
	err := &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: "missing required field",
	}

	// When: calling Error()
	msg := err.Error()

	// Then: returns formatted message
	assert.Contains(t, msg, "MCP error")
	assert.Contains(t, msg, "-32602")
	assert.Contains(t, msg, "missing required field")
}

func TestNewInvalidParamsError(t *testing.T) {
	// Given: a custom message
	msg := "query parameter is required"

	// When: creating invalid params error
	err := NewInvalidParamsError(msg)

	// Then: returns error with custom message
	assert.Equal(t, ErrCodeInvalidParams, err.Code)
	assert.Equal(t, msg, err.Message)
}

// TS09: MCP error codes correct for ForgeError
func TestMapError_ForgeError_FileNotFound(t *testing.T) {
	// Given: an ForgeError with file not found code
	err := amerrors.New(amerrors.ErrCodeFileNotFound, "file 'config.yaml' not found", nil)

	// When: mapping the error
	result := MapError(err)

	// Then: returns correct MCP error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeFileNotFound, result.Code)
	assert.Contains(t, result.Message, "config.yaml")
}

func TestMapError_ForgeError_NetworkTimeout(t *testing.T) {
	// Given: an ForgeError with network timeout
	err := amerrors.New(amerrors.ErrCodeNetworkTimeout, "connection timed out", nil)

	// When: mapping the error
	result := MapError(err)

	// Then: returns timeout error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeTimeout, result.Code)
}

func TestMapError_ForgeError_ValidationError(t *testing.T) {
	// Given: an ForgeError with validation error
	err := amerrors.New(amerrors.ErrCodeInvalidInput, "query cannot be empty", nil)

	// When: mapping the error
	result := MapError(err)

	// Then: returns invalid params error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeInvalidParams, result.Code)
}

func TestMapError_ForgeError_WithSuggestion(t *testing.T) {
	// Given: an ForgeError with suggestion
	err := amerrors.New(amerrors.ErrCodeFileNotFound, "file not found", nil).
		WithSuggestion("Check the file path exists")

	// When: mapping the error
	result := MapError(err)

	// Then: message includes suggestion
	require.NotNil(t, result)
	assert.Contains(t, result.Message, "file not found")
	assert.Contains(t, result.Message, "Check the file path")
}

func TestMapError_ForgeError_Internal(t *testing.T) {
	// Given: an internal ForgeError
	err := amerrors.New(amerrors.ErrCodeInternal, "unexpected error", nil)

	// When: mapping the error
	result := MapError(err)

	// Then: returns internal error
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeInternalError, result.Code)
}

func TestMapError_ForgeError_NameExists(t *testing.T) {
	// Given: the ForgeError save_knowledge raises on a name collision
	// (internal/mcp/save.go)
	err := amerrors.New(amerrors.ErrCodeInvalidPath, "knowledge/notes.md already exists; choose a different name", nil)

	// When: mapping the error
	result := MapError(err)

	// Then: returns a code distinct from generic invalid params
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeNameExists, result.Code)
	assert.NotEqual(t, ErrCodeInvalidParams, result.Code)
}

func TestMapError_WrappedForgeError(t *testing.T) {
	// Given: a wrapped ForgeError
	amanErr := amerrors.New(amerrors.ErrCodeNetworkTimeout, "timeout", nil)
	err := fmt.Errorf("operation failed: %w", amanErr)

	// When: mapping the error
	result := MapError(err)

	// Then: correctly identifies the wrapped ForgeError
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeTimeout, result.Code)
}
