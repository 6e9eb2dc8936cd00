package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"socialgraph/internal/models"
)

// authedRequest builds a request carrying an authenticated user in its
// context, the way the auth middleware would.
func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewBuffer(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	user := &models.User{ID: uuid.New(), Email: "me@example.com"}
	return req.WithContext(SetUserInContext(req.Context(), user))
}

func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d (body %s)", status, rr.Code, rr.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] != message {
		t.Fatalf("expected error %q, got %q", message, body["error"])
	}
}
