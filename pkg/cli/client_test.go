package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/platforms":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Acme Corp", body["name"])
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "p-1"})
		case "/v1/forbidden":
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]any{"code": 403, "message": "access denied"})
		case "/v1/empty":
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	// Trailing slash on the host is trimmed.
	client := NewClient(srv.URL+"/", "test-token")
	ctx := context.Background()

	var out map[string]string
	err := client.Do(ctx, http.MethodPost, "/v1/platforms", map[string]string{"name": "Acme Corp"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "p-1", out["id"])

	err = client.Do(ctx, http.MethodGet, "/v1/forbidden", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.HTTPStatus)
	assert.Equal(t, "access denied", apiErr.Message)
	assert.Equal(t, "access denied", apiErr.Error())

	var ignored map[string]string
	err = client.Do(ctx, http.MethodDelete, "/v1/empty", nil, &ignored)
	assert.NoError(t, err, "204 with an out value must not fail decoding")
}

func TestAPIError_FallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Do(context.Background(), http.MethodGet, "/x", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "502")
}
