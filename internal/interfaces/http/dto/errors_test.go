package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeForKind(t *testing.T) {
	tests := []struct {
		kind   shared.ErrorKind
		code   string
		status int
	}{
		{shared.KindNotFound, ErrCodeNotFound, http.StatusNotFound},
		{shared.KindBusinessRule, ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{shared.KindConflict, ErrCodeConcurrencyConflict, http.StatusConflict},
		{shared.KindUnauthorized, ErrCodeUnauthorized, http.StatusUnauthorized},
		{shared.KindUnexpected, ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			code := CodeForKind(tt.kind)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, GetHTTPStatus(code))
		})
	}
}

func TestGetHTTPStatus_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("ERR_SOMETHING_ELSE"))
	assert.Equal(t, http.StatusTooManyRequests, GetHTTPStatus(ErrCodeRateLimited))
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeConcurrencyConflict, "Record changed", "Sale was modified", "req-1")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "data")

	errObj := body["error"].(map[string]any)
	assert.Equal(t, ErrCodeConcurrencyConflict, errObj["code"])
	assert.Equal(t, "Record changed", errObj["title"])
	assert.Equal(t, "req-1", errObj["request_id"])
	assert.NotContains(t, errObj, "details")
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{{Field: "quantity", Message: "must be greater than 0"}})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20, 3)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
