package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/faceattend/faceattend/internal/attendance"
)

// AttendanceHandler handles attendance marking.
type AttendanceHandler struct {
	recorder *attendance.Recorder
	now      func() time.Time
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(recorder *attendance.Recorder) *AttendanceHandler {
	return &AttendanceHandler{
		recorder: recorder,
		now:      time.Now,
	}
}

// MarkRequest carries a recognition attempt. Either a descriptor computed in
// the browser or a raw camera frame must be present.
type MarkRequest struct {
	Descriptor []float32 `json:"descriptor,omitempty"`
	Image      string    `json:"image,omitempty"` // base64 data URL
}

// Mark matches a face against enrolled identities and records attendance.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	var req MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	var result attendance.AttendanceResult
	var err error

	switch {
	case len(req.Descriptor) > 0:
		result, err = h.recorder.RecordAttendance(r.Context(), req.Descriptor, h.now())
	case req.Image != "":
		imageData, decodeErr := decodeImage(req.Image)
		if decodeErr != nil {
			respondError(w, http.StatusBadRequest, decodeErr.Error())
			return
		}
		gen := h.recorder.NextCapture()
		result, err = h.recorder.MarkCapture(r.Context(), gen, imageData, h.now())
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
