package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/faceattend/faceattend/internal/attendance"
)

// EnrollHandler handles identity enrollment endpoints.
type EnrollHandler struct {
	recorder *attendance.Recorder
}

// NewEnrollHandler creates a new enrollment handler.
func NewEnrollHandler(recorder *attendance.Recorder) *EnrollHandler {
	return &EnrollHandler{recorder: recorder}
}

// EnrollRequest carries a new identity. Either a descriptor computed in the
// browser or a raw camera frame must be present.
type EnrollRequest struct {
	Name       string    `json:"name"`
	Descriptor []float32 `json:"descriptor,omitempty"`
	Image      string    `json:"image,omitempty"` // base64 data URL
}

// Enroll registers a face descriptor under a name.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	var result attendance.EnrollmentResult
	var err error

	switch {
	case len(req.Descriptor) > 0:
		result, err = h.recorder.Enroll(r.Context(), req.Name, req.Descriptor)
	case req.Image != "":
		imageData, decodeErr := decodeImage(req.Image)
		if decodeErr != nil {
			respondError(w, http.StatusBadRequest, decodeErr.Error())
			return
		}
		gen := h.recorder.NextCapture()
		result, err = h.recorder.EnrollCapture(r.Context(), gen, req.Name, imageData)
	default:
		respondError(w, http.StatusBadRequest, "descriptor or image is required")
		return
	}

	if err != nil {
		respondInternal(w, err)
		return
	}

	respondJSON(w, outcomeStatus(result.Outcome), result)
}
