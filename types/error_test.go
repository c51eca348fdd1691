package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(ErrUpstreamError, "generator unreachable").
		WithCause(cause).
		WithHTTPStatus(http.StatusBadGateway).
		WithRetryable(true)

	assert.Equal(t, ErrUpstreamError, err.Code)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "UPSTREAM_ERROR")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorAsTarget(t *testing.T) {
	var wrapped error = NewError(ErrServiceUnavailable, "not ready")

	var apiErr *Error
	require.ErrorAs(t, wrapped, &apiErr)
	assert.Equal(t, ErrServiceUnavailable, apiErr.Code)
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrTimeout, GetErrorCode(NewError(ErrTimeout, "slow")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}
