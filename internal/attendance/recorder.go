// Package attendance implements enrollment and daily attendance marking on
// top of the descriptor store and the ledger.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faceattend/faceattend/internal/extractor"
	"github.com/faceattend/faceattend/internal/matcher"
	"github.com/faceattend/faceattend/internal/store"
)

// Outcome classifies the result of an enrollment or marking attempt.
// These are ordinary results, not errors; errors are reserved for storage
// and extraction failures.
type Outcome string

const (
	OutcomeEnrolled       Outcome = "enrolled"
	OutcomeDuplicateFace  Outcome = "duplicate_face"
	OutcomeEmptyName      Outcome = "empty_name"
	OutcomeRecorded       Outcome = "recorded"
	OutcomeAlreadyMarked  Outcome = "already_marked"
	OutcomeNoFaceMatch    Outcome = "no_face_match"
	OutcomeNoFaceDetected Outcome = "no_face_detected"
	OutcomeSuperseded     Outcome = "capture_superseded"
)

// EnrollmentResult describes what happened to an enrollment attempt.
type EnrollmentResult struct {
	Outcome     Outcome `json:"outcome"`
	Name        string  `json:"name,omitempty"`
	MatchedName string  `json:"matched_name,omitempty"`
	Distance    float64 `json:"distance,omitempty"`
	Enrolled    int     `json:"enrolled"`
}

// AttendanceResult describes what happened to a marking attempt.
type AttendanceResult struct {
	Outcome  Outcome                `json:"outcome"`
	Name     string                 `json:"name,omitempty"`
	Distance float64                `json:"distance,omitempty"`
	Event    *store.AttendanceEvent `json:"event,omitempty"`
}

// Recorder coordinates the matcher, the descriptor store and the ledger.
// The store and ledger mutexes make each read-evaluate-write sequence
// atomic with respect to concurrent requests.
type Recorder struct {
	identities store.IdentityWriter
	ledger     store.LedgerWriter
	provider   extractor.Provider

	enrollThreshold    float64
	recognizeThreshold float64

	storeMu    sync.Mutex
	ledgerMu   sync.Mutex
	captureGen atomic.Int64
}

// NewRecorder creates a recorder with the given backends and thresholds.
// The provider may be nil when callers submit descriptors directly.
func NewRecorder(identities store.IdentityWriter, ledger store.LedgerWriter, provider extractor.Provider, enrollThreshold, recognizeThreshold float64) *Recorder {
	return &Recorder{
		identities:         identities,
		ledger:             ledger,
		provider:           provider,
		enrollThreshold:    enrollThreshold,
		recognizeThreshold: recognizeThreshold,
	}
}

// Enroll registers a descriptor under name. Whitespace-only names are
// rejected and a face within the enroll threshold of any stored descriptor
// is reported as a duplicate, regardless of whose it is. Re-enrolling an
// existing name overwrites its descriptor when the new capture clears the
// duplicate check.
func (r *Recorder) Enroll(ctx context.Context, name string, descriptor []float32) (EnrollmentResult, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return EnrollmentResult{Outcome: OutcomeEmptyName}, nil
	}

	r.storeMu.Lock()
	defer r.storeMu.Unlock()

	enrolled, err := r.identities.Load(ctx)
	if err != nil {
		return EnrollmentResult{}, fmt.Errorf("loading enrolled identities: %w", err)
	}

	decision, err := matcher.EvaluateForEnrollment(descriptor, enrolled, r.enrollThreshold)
	if err != nil {
		return EnrollmentResult{}, err
	}
	if decision.Duplicate {
		return EnrollmentResult{
			Outcome:     OutcomeDuplicateFace,
			Name:        trimmed,
			MatchedName: decision.MatchedName,
			Distance:    decision.Distance,
			Enrolled:    len(enrolled),
		}, nil
	}

	if err := r.identities.Save(ctx, trimmed, descriptor); err != nil {
		return EnrollmentResult{}, fmt.Errorf("saving identity: %w", err)
	}

	count, err := r.identities.Count(ctx)
	if err != nil {
		return EnrollmentResult{}, fmt.Errorf("counting identities: %w", err)
	}

	return EnrollmentResult{Outcome: OutcomeEnrolled, Name: trimmed, Enrolled: count}, nil
}

// RecordAttendance matches the descriptor against enrolled identities and,
// on a hit, appends at most one ledger event per identity per calendar day.
func (r *Recorder) RecordAttendance(ctx context.Context, descriptor []float32, now time.Time) (AttendanceResult, error) {
	r.storeMu.Lock()
	enrolled, err := r.identities.Load(ctx)
	r.storeMu.Unlock()
	if err != nil {
		return AttendanceResult{}, fmt.Errorf("loading enrolled identities: %w", err)
	}

	decision, err := matcher.Identify(descriptor, enrolled, r.recognizeThreshold)
	if err != nil {
		return AttendanceResult{}, err
	}
	if !decision.Matched {
		return AttendanceResult{Outcome: OutcomeNoFaceMatch, Distance: decision.Distance}, nil
	}

	event := store.NewAttendanceEvent(decision.Name, now)

	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	marked, err := r.ledger.HasEvent(ctx, event.Name, event.Date)
	if err != nil {
		return AttendanceResult{}, fmt.Errorf("checking ledger: %w", err)
	}
	if marked {
		return AttendanceResult{Outcome: OutcomeAlreadyMarked, Name: decision.Name, Distance: decision.Distance}, nil
	}

	if err := r.ledger.Append(ctx, event); err != nil {
		if errors.Is(err, store.ErrDuplicateEvent) {
			return AttendanceResult{Outcome: OutcomeAlreadyMarked, Name: decision.Name, Distance: decision.Distance}, nil
		}
		return AttendanceResult{}, fmt.Errorf("appending ledger event: %w", err)
	}

	return AttendanceResult{
		Outcome:  OutcomeRecorded,
		Name:     decision.Name,
		Distance: decision.Distance,
		Event:    &event,
	}, nil
}

// NextCapture advances the capture generation and returns it. Each new
// camera frame supersedes all outstanding frames; results from superseded
// frames are discarded rather than written.
func (r *Recorder) NextCapture() int64 {
	return r.captureGen.Add(1)
}

// currentCapture reports whether gen is still the latest capture.
func (r *Recorder) currentCapture(gen int64) bool {
	return r.captureGen.Load() == gen
}

// EnrollCapture extracts a descriptor from a captured frame and enrolls it.
// Extraction results for frames that are no longer the latest capture are
// discarded.
func (r *Recorder) EnrollCapture(ctx context.Context, gen int64, name string, imageData []byte) (EnrollmentResult, error) {
	descriptor, result, err := r.extractCapture(ctx, gen, imageData)
	if descriptor == nil {
		return EnrollmentResult{Outcome: result}, err
	}
	if !r.currentCapture(gen) {
		return EnrollmentResult{Outcome: OutcomeSuperseded}, nil
	}
	return r.Enroll(ctx, name, descriptor)
}

// MarkCapture extracts a descriptor from a captured frame and records
// attendance for the matched identity, unless the frame was superseded.
func (r *Recorder) MarkCapture(ctx context.Context, gen int64, imageData []byte, now time.Time) (AttendanceResult, error) {
	descriptor, result, err := r.extractCapture(ctx, gen, imageData)
	if descriptor == nil {
		return AttendanceResult{Outcome: result}, err
	}
	if !r.currentCapture(gen) {
		return AttendanceResult{Outcome: OutcomeSuperseded}, nil
	}
	return r.RecordAttendance(ctx, descriptor, now)
}

func (r *Recorder) extractCapture(ctx context.Context, gen int64, imageData []byte) ([]float32, Outcome, error) {
	if r.provider == nil {
		return nil, "", errors.New("no extraction provider configured")
	}
	if !r.currentCapture(gen) {
		return nil, OutcomeSuperseded, nil
	}

	descriptor, err := r.provider.Extract(ctx, imageData)
	if errors.Is(err, extractor.ErrNoFaceDetected) {
		return nil, OutcomeNoFaceDetected, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("extracting descriptor: %w", err)
	}
	return descriptor, "", nil
}
