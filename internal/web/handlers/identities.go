package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/faceattend/faceattend/internal/constants"
	"github.com/faceattend/faceattend/internal/store"
)

// IdentitiesHandler serves enrolled identity listings and nearest-neighbor
// diagnostics for threshold tuning.
type IdentitiesHandler struct {
	identities store.IdentityReader
	searcher   store.NearestSearcher
}

// NewIdentitiesHandler creates a new identities handler.
func NewIdentitiesHandler(identities store.IdentityReader, searcher store.NearestSearcher) *IdentitiesHandler {
	return &IdentitiesHandler{identities: identities, searcher: searcher}
}

// IdentitySummary is an enrolled identity without its descriptor.
type IdentitySummary struct {
	Name      string `json:"name"`
	Dim       int    `json:"dim"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// IdentitiesResponse lists enrolled identities.
type IdentitiesResponse struct {
	Identities []IdentitySummary `json:"identities"`
	Count      int               `json:"count"`
}

// List returns all enrolled identities. Descriptors stay server-side.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.identities.Load(r.Context())
	if err != nil {
		log.Printf("Failed to load identities: %v", err)
		respondInternal(w, err)
		return
	}

	summaries := make([]IdentitySummary, 0, len(identities))
	for _, identity := range identities {
		summary := IdentitySummary{Name: identity.Name, Dim: identity.Dim}
		if !identity.CreatedAt.IsZero() {
			summary.CreatedAt = identity.CreatedAt.Format(time.RFC3339)
		}
		if !identity.UpdatedAt.IsZero() {
			summary.UpdatedAt = identity.UpdatedAt.Format(time.RFC3339)
		}
		summaries = append(summaries, summary)
	}

	respondJSON(w, http.StatusOK, IdentitiesResponse{Identities: summaries, Count: len(summaries)})
}

// NearestRequest asks for the closest enrolled identities to a descriptor.
type NearestRequest struct {
	Descriptor []float32 `json:"descriptor"`
	Limit      int       `json:"limit,omitempty"`
}

// NearestMatch pairs a candidate identity with its distance.
type NearestMatch struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// NearestResponse lists candidates ordered by ascending distance.
type NearestResponse struct {
	Matches []NearestMatch `json:"matches"`
}

// Nearest returns the closest enrolled identities to a probe descriptor.
func (h *IdentitiesHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		respondError(w, http.StatusServiceUnavailable, "nearest search is not available")
		return
	}

	var req NearestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Descriptor) == 0 {
		respondError(w, http.StatusBadRequest, "descriptor is required")
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}

	identities, distances, err := h.searcher.FindNearest(r.Context(), req.Descriptor, limit)
	if err != nil {
		log.Printf("Nearest identity search failed: %v", err)
		respondInternal(w, err)
		return
	}

	matches := make([]NearestMatch, 0, len(identities))
	for i := range identities {
		matches = append(matches, NearestMatch{Name: identities[i].Name, Distance: distances[i]})
	}
	respondJSON(w, http.StatusOK, NearestResponse{Matches: matches})
}
