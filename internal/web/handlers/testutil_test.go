package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/faceattend/faceattend/internal/attendance"
	"github.com/faceattend/faceattend/internal/extractor"
	"github.com/faceattend/faceattend/internal/store/mock"
)

// testRecorder builds a recorder over fresh mock backends.
func testRecorder(provider extractor.Provider) (*attendance.Recorder, *mock.IdentityStore, *mock.Ledger) {
	identities := mock.NewIdentityStore()
	ledger := mock.NewLedger()
	return attendance.NewRecorder(identities, ledger, provider, 0.45, 0.60), identities, ledger
}

// jsonRequest creates a request with a JSON-encoded body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// descriptorAt builds a 128-component descriptor at a known distance from zero.
func descriptorAt(offset float32) []float32 {
	d := make([]float32, 128)
	d[0] = offset
	return d
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// assertOutcome checks the outcome field of a recorder result response.
func assertOutcome(t *testing.T, recorder *httptest.ResponseRecorder, expected attendance.Outcome) {
	t.Helper()
	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["outcome"] != string(expected) {
		t.Errorf("expected outcome '%s', got '%v'", expected, result["outcome"])
	}
}
