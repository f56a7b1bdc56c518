package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ValidationError("bad").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFoundError("missing").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, InternalError("boom", nil).HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, UnavailableError("down").HTTPStatus())
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := InternalError("database query failed", cause)

	assert.Contains(t, err.Error(), "database query failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestError_WithField(t *testing.T) {
	err := ValidationError("invalid strategy").
		WithField("strategy", "quantum").
		WithField("conversation_id", "conv-1")

	assert.Equal(t, "quantum", err.Context["strategy"])
	assert.Equal(t, "conv-1", err.Context["conversation_id"])
}

func TestError_ToResponse(t *testing.T) {
	err := NotFoundError("report not found").WithField("report_id", "abc")

	resp := err.ToResponse()
	assert.Equal(t, "report not found", resp.Error)
	assert.Equal(t, TypeNotFound, resp.Type)
	assert.Equal(t, "abc", resp.Context["report_id"])
}

func TestAsStructuredError(t *testing.T) {
	structured := ValidationError("bad input")
	assert.Same(t, structured, AsStructuredError(structured))

	wrapped := fmt.Errorf("handler: %w", structured)
	assert.Same(t, structured, AsStructuredError(wrapped))

	plain := errors.New("something broke")
	converted := AsStructuredError(plain)
	require.NotNil(t, converted)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.ErrorIs(t, converted, plain)

	assert.Nil(t, AsStructuredError(nil))
}
