// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Descriptor constants
const (
	// DefaultDescriptorDim is the descriptor length produced by the default
	// face recognition model (face-api.js recognition net).
	DefaultDescriptorDim = 128

	// DefaultModel is the extractor model profile used when none is configured
	DefaultModel = "face-api-recognition"
)

// Matching policy constants
const (
	// EnrollThreshold is the maximum Euclidean distance below which a new
	// descriptor is considered a duplicate of an already enrolled identity.
	// Stricter than recognition to protect against accidental duplicate identities.
	EnrollThreshold = 0.45

	// RecognizeThreshold is the maximum Euclidean distance below which a
	// captured descriptor is accepted as a match during attendance marking.
	// More permissive than enrollment to tolerate lighting and pose variance.
	RecognizeThreshold = 0.60
)

// HNSW index constants
const (
	// HNSWMaxNeighbors is the M parameter for the HNSW graph
	HNSWMaxNeighbors = 16

	// DefaultSearchLimit is the default limit for nearest-identity lookups
	DefaultSearchLimit = 10
)

// Time layouts used by the attendance ledger
const (
	// DateLayout is the calendar-day format of attendance events
	DateLayout = "2006-01-02"

	// TimeLayout is the wall-clock format of attendance events
	TimeLayout = "15:04:05"
)

// Image constants
const (
	// MaxImageSize is the maximum dimension (width or height) of a frame
	// sent to the descriptor extractor
	MaxImageSize = 1280
)
