/*
Package engine implements the period-and-rotation engine for recurring
shared-payment groups.

PURPOSE:
  Given a snapshot of a group's configuration, its participants, and its
  payment history, the engine answers:
  - What are the current and previous billing periods? (period.go)
  - How much is still outstanding for a period?        (pending.go)
  - Who has gone longest without contributing?         (ranking.go)
  - Who pays next when someone's turn is skipped?      (rotation.go)

DESIGN PRINCIPLES:
  1. Pure: every operation is a function of its inputs plus an explicit
     reference day. No wall-clock reads, no I/O, no state between calls.
  2. Borrowed inputs: the caller owns all records; the engine reads them
     for one computation and returns independent values.
  3. Total over bad input: unknown frequencies fall back to monthly and
     over-collection clamps to zero. The single error surface is a
     reassignment targeting a participant absent from the ranking.
  4. Precision: amounts are decimal.Decimal, never floats.

KEY CONCEPTS IN THIS FILE (types.go):
  - GroupConfig: the group's collective per-period obligation
  - ParticipantRecord / PaymentRecord: snapshot inputs
  - RankingEntry: computed "who pays next" output

SEE ALSO:
  - period.go: Frequency and Period calculation
  - ranking.go: overdue ranking and classification
  - rotation.go: skip-and-requeue reassignment
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type GroupID string
type ParticipantID string

// =============================================================================
// SNAPSHOT INPUTS
// =============================================================================

// GroupConfig is the read-only payment configuration of a group.
//
// ExpectedAmount is the group's COLLECTIVE obligation per period, not a
// per-head amount: the group as a whole owes this much each cycle, however
// the members split it among themselves.
type GroupConfig struct {
	ExpectedAmount decimal.Decimal
	Frequency      Frequency
}

// ParticipantRecord is a snapshot of one group member.
type ParticipantRecord struct {
	ID          ParticipantID
	DisplayName string
	JoinedAt    time.Time
	Active      bool
}

// PaymentRecord is a snapshot of one payment. Only payments with
// Verified == true count toward pending-amount reduction and rankings;
// verification is granted outside the engine (e.g., by the group owner).
type PaymentRecord struct {
	ParticipantID ParticipantID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Verified      bool
}

// =============================================================================
// COMPUTED OUTPUTS
// =============================================================================

// RankingEntry is one participant's position in the "who pays next" ranking.
type RankingEntry struct {
	ParticipantID ParticipantID
	DisplayName   string

	// Whole days since the participant's last verified payment, or since
	// they joined the group if they have never paid.
	DaysSinceLast int

	// Day of the last verified payment; nil for participants who have
	// never contributed.
	LastContribution *TimePoint

	// The group's configured amount for the period. Constant across all
	// entries of one ranking.
	AmountDue decimal.Decimal
}

// HasContributed reports whether the entry reflects an actual payment
// rather than join-date tenure.
func (e RankingEntry) HasContributed() bool { return e.LastContribution != nil }
