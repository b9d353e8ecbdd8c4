package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/interfaces/http/dto"
	"github.com/erp/retail/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	type command struct {
		Name string `validate:"required"`
	}
	validationErr := appshared.Validate(command{})
	require.Error(t, validationErr)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", validationErr, http.StatusBadRequest, dto.ErrCodeValidation},
		{"not found", shared.NewNotFoundError("Product"), http.StatusNotFound, dto.ErrCodeNotFound},
		{"business rule", shared.NewBusinessRuleError("Insufficient stock", "only 2 left"), http.StatusUnprocessableEntity, dto.ErrCodeBusinessRule},
		{"conflict", shared.NewConflictError("Sale"), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"unauthorized", shared.NewUnauthorizedError(), http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"wrapped conflict", fmt.Errorf("save: %w", shared.NewConflictError("Product")), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"unexpected", shared.NewUnexpectedError(assert.AnError), http.StatusInternalServerError, dto.ErrCodeInternal},
		{"plain error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext(http.MethodGet, "/")
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}

	t.Run("internal details stay hidden", func(t *testing.T) {
		c, w := newContext(http.MethodGet, "/")
		h.HandleError(c, fmt.Errorf("pq: connection refused"))

		assert.NotContains(t, w.Body.String(), "connection refused")
		assert.Len(t, c.Errors, 1)
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newContext(http.MethodGet, "/")
		h.HandleError(c, nil)
		assert.False(t, c.Writer.Written())
		assert.Equal(t, 0, w.Body.Len())
	})
}

func TestBaseHandler_TenantID(t *testing.T) {
	h := &BaseHandler{}

	t.Run("resolved tenant", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/")
		tenantID := uuid.New()
		c.Set(middleware.TenantIDKey, tenantID)

		got, ok := h.tenantID(c)
		assert.True(t, ok)
		assert.Equal(t, tenantID, got)
	})

	t.Run("missing tenant answers 401", func(t *testing.T) {
		c, w := newContext(http.MethodGet, "/")

		_, ok := h.tenantID(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, w).Error.Code)
	})
}

func TestBaseHandler_PathID(t *testing.T) {
	h := &BaseHandler{}

	t.Run("valid id", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/")
		id := uuid.New()
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		got, ok := h.pathID(c, "id")
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("malformed id answers 400", func(t *testing.T) {
		c, w := newContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: "123"}}

		_, ok := h.pathID(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	})
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newContext(http.MethodPost, "/")
	h.Created(c, gin.H{"id": "1"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)

	c, w = newContext(http.MethodDelete, "/")
	h.NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)

	c, w = newContext(http.MethodGet, "/")
	respondPage(c, &shared.Paginated[int]{Items: []int{1, 2}, Total: 12, Page: 2, PageSize: 2, TotalPages: 6})
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 12, resp.Meta.Total)
	assert.Equal(t, 6, resp.Meta.TotalPages)
}
