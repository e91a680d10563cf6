/*
errors.go - Error types shared by the engine and its storage consumers

PURPOSE:
  All sentinel errors in one place. The engine itself errors in exactly one
  situation (reassigning a participant absent from the ranking); everything
  else it resolves internally by fallback or clamping. Store implementations
  reuse the not-found sentinels so callers match with errors.Is either way.

USAGE:
  if errors.Is(err, engine.ErrParticipantNotFound) { ... }
  if engine.IsNotFound(err) { ... }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrParticipantNotFound is returned when a referenced participant does
	// not exist (in a ranking or in storage).
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrGroupNotFound is returned by stores when a referenced group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrPaymentNotFound is returned by stores when a referenced payment does not exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ParticipantNotFoundError identifies which participant was missing.
type ParticipantNotFoundError struct {
	ID ParticipantID
}

func (e *ParticipantNotFoundError) Error() string {
	return fmt.Sprintf("participant %q not found", string(e.ID))
}

func (e *ParticipantNotFoundError) Unwrap() error { return ErrParticipantNotFound }

// GroupNotFoundError identifies which group was missing.
type GroupNotFoundError struct {
	ID GroupID
}

func (e *GroupNotFoundError) Error() string {
	return fmt.Sprintf("group %q not found", string(e.ID))
}

func (e *GroupNotFoundError) Unwrap() error { return ErrGroupNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrParticipantNotFound) ||
		errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}
