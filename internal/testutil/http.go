package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/flockhub/internal/app/system/auth"
)

// JSONRequest builds a request with the given body encoded as JSON.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// AuthRequest builds a JSON request already authenticated as userID,
// bypassing token verification.
func AuthRequest(t *testing.T, method, target string, body any, userID string) *http.Request {
	t.Helper()
	return auth.WithTestUser(JSONRequest(t, method, target, body), userID)
}

// DecodeJSON decodes a recorded response body into dst.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}
