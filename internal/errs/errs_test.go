package errs

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorJSONShape(t *testing.T) {
	err := NewNotFoundError("Item not found", false, nil).
		WithCause(errors.New("sql: no rows in result set"))

	body, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, "Item not found", decoded["error"])
	assert.Equal(t, "NOT_FOUND", decoded["code"])
	assert.EqualValues(t, http.StatusNotFound, decoded["status"])
	assert.NotContains(t, string(body), "no rows")
}

func TestWithMessageAndCauseCopy(t *testing.T) {
	base := NewInternalServerError()
	cause := errors.New("connection refused")

	derived := base.WithMessage("Failed to list items").WithCause(cause)

	assert.Equal(t, "Internal Server Error", base.Message)
	assert.Nil(t, base.Cause)
	assert.Equal(t, "Failed to list items", derived.Error())
	assert.Equal(t, http.StatusInternalServerError, derived.Status)
	assert.ErrorIs(t, derived, cause)
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), NewBadRequestError("title is required", true, nil, nil, nil))

	var httpErr *HTTPError
	require.ErrorAs(t, wrapped, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "BAD_REQUEST", httpErr.Code)
}

func TestCustomCode(t *testing.T) {
	code := "ITEM_INVALID"
	err := NewBadRequestError("bad", false, &code, []FieldError{{Field: "title", Error: "is required"}}, nil)

	assert.Equal(t, "ITEM_INVALID", err.Code)
	assert.Len(t, err.Errors, 1)
}

func TestTooManyRequestsRetryAction(t *testing.T) {
	tests := []struct {
		retryAfter time.Duration
		want       string
	}{
		{retryAfter: 0, want: "1"},
		{retryAfter: 20 * time.Millisecond, want: "1"},
		{retryAfter: 1500 * time.Millisecond, want: "2"},
		{retryAfter: 1000 * time.Second, want: "1000"},
	}

	for _, tt := range tests {
		err := NewTooManyRequestsError("slow down", tt.retryAfter)

		assert.Equal(t, "TOO_MANY_REQUESTS", err.Code)
		assert.Equal(t, http.StatusTooManyRequests, err.Status)
		require.NotNil(t, err.Action)
		assert.Equal(t, ActionTypeRetry, err.Action.Type)
		assert.Equal(t, tt.want, err.Action.Value, "retryAfter=%s", tt.retryAfter)
	}
}
