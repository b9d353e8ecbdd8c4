package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the response shape every API endpoint writes
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Request describes one call against an http.Handler
type Request struct {
	Method   string
	Path     string
	Body     any
	TenantID uuid.UUID
	Headers  map[string]string
}

// Serve encodes r.Body as JSON, sends the request and decodes the envelope.
// A non-nil TenantID is sent as X-Tenant-ID.
func Serve(t *testing.T, h http.Handler, r Request) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if r.Body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(r.Body), "Failed to encode request body")
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, r.Path, &buf)
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.TenantID != uuid.Nil {
		req.Header.Set("X-Tenant-ID", r.TenantID.String())
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env Envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to decode response: %s", w.Body.String())
	}
	return w, env
}

// DecodeData unmarshals the envelope payload into T
func DecodeData[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), "Failed to decode data")
	return out
}

// AssertErrorCode checks a failed envelope carries the given error code
func AssertErrorCode(t *testing.T, env Envelope, code string) {
	t.Helper()
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code)
}
