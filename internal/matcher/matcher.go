// Package matcher implements the identity matching engine: Euclidean
// distance between face descriptors and the threshold policies for
// enrollment deduplication and attendance-time recognition.
//
// All functions are pure: they operate on a snapshot of the enrolled
// identities and never touch persistent state.
package matcher

import (
	"fmt"
	"math"

	"github.com/faceattend/faceattend/internal/store"
)

// DimensionError indicates a descriptor dimensionality mismatch between the
// extractor and the enrolled identities. This is a contract violation
// (version skew between models), not a business case: vectors are never
// truncated or padded.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("descriptor dimension mismatch: want %d components, got %d", e.Want, e.Got)
}

// EnrollmentDecision is the result of the duplicate check performed before
// enrolling a new identity.
type EnrollmentDecision struct {
	Duplicate   bool
	MatchedName string  // identity the candidate clashes with, if Duplicate
	Distance    float64 // distance to the clashing identity, if Duplicate
}

// RecognitionDecision is the result of matching a captured descriptor
// against the enrolled identities.
type RecognitionDecision struct {
	Matched  bool
	Name     string  // best matching identity, if Matched
	Distance float64 // distance to the best match, if Matched
}

// Distance computes the Euclidean distance between two descriptors.
// Accumulation happens in float64 regardless of the float32 storage type.
func Distance(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, &DimensionError{Want: len(a), Got: len(b)}
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// EvaluateForEnrollment decides whether a candidate descriptor may be
// enrolled as a new identity. Any enrolled identity strictly closer than
// threshold makes the candidate a duplicate; the first such identity found
// is reported. Which one is reported among ties is unspecified.
func EvaluateForEnrollment(candidate []float32, enrolled []store.EnrolledIdentity, threshold float64) (EnrollmentDecision, error) {
	for i := range enrolled {
		dist, err := Distance(candidate, enrolled[i].Descriptor)
		if err != nil {
			return EnrollmentDecision{}, err
		}
		if dist < threshold {
			return EnrollmentDecision{
				Duplicate:   true,
				MatchedName: enrolled[i].Name,
				Distance:    dist,
			}, nil
		}
	}
	return EnrollmentDecision{}, nil
}

// Identify finds the enrolled identity closest to the candidate descriptor.
// The match is accepted only when the minimum distance is strictly below
// threshold; an empty enrollment set always yields no match.
func Identify(candidate []float32, enrolled []store.EnrolledIdentity, threshold float64) (RecognitionDecision, error) {
	if len(enrolled) == 0 {
		return RecognitionDecision{}, nil
	}

	minDist := math.Inf(1)
	var minName string

	for i := range enrolled {
		dist, err := Distance(candidate, enrolled[i].Descriptor)
		if err != nil {
			return RecognitionDecision{}, err
		}
		if dist < minDist {
			minDist = dist
			minName = enrolled[i].Name
		}
	}

	if minDist < threshold {
		return RecognitionDecision{Matched: true, Name: minName, Distance: minDist}, nil
	}
	return RecognitionDecision{}, nil
}
