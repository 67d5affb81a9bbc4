package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/faceattend/faceattend/internal/attendance"
	"github.com/faceattend/faceattend/internal/matcher"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondInternal hides backend error details from the client.
func respondInternal(w http.ResponseWriter, err error) {
	var dimErr *matcher.DimensionError
	if errors.As(err, &dimErr) {
		respondError(w, http.StatusBadRequest, dimErr.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "internal error")
}

// outcomeStatus maps a recorder outcome to an HTTP status code. Informational
// outcomes like already_marked are still successful requests.
func outcomeStatus(outcome attendance.Outcome) int {
	switch outcome {
	case attendance.OutcomeEnrolled, attendance.OutcomeRecorded, attendance.OutcomeAlreadyMarked:
		return http.StatusOK
	case attendance.OutcomeEmptyName:
		return http.StatusBadRequest
	case attendance.OutcomeDuplicateFace, attendance.OutcomeSuperseded:
		return http.StatusConflict
	case attendance.OutcomeNoFaceMatch:
		return http.StatusNotFound
	case attendance.OutcomeNoFaceDetected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

// decodeImage decodes a browser capture sent as a base64 data URL.
func decodeImage(image string) ([]byte, error) {
	if idx := strings.Index(image, ","); idx >= 0 && strings.HasPrefix(image, "data:") {
		image = image[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return nil, errors.New("image is not valid base64")
	}
	if len(data) == 0 {
		return nil, errors.New("image is empty")
	}
	return data, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
