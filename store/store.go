/*
Package store defines persistence for groups, participants, and payments.

PURPOSE:
  The engine is pure and storage-free; this package owns the durable records
  the engine's snapshots are built from. Two implementations exist:
  - Memory (memory.go): for tests and development
  - sqlite (store/sqlite): production storage

OWNERSHIP:
  Store rows carry identity and housekeeping fields (group linkage, notes,
  receipt URLs) that the engine never sees. Each row type knows how to strip
  itself down to the engine's borrowed snapshot form (Record/Config methods).

ERRORS:
  Implementations return the engine's not-found sentinels so callers can use
  errors.Is / engine.IsNotFound regardless of which layer raised the error.
*/
package store

import (
	"context"
	"time"

	"github.com/ManuelCebreiro/payFriendly/engine"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORDS
// =============================================================================

// Group is a shared-payment group.
type Group struct {
	ID          engine.GroupID
	Name        string
	Description string

	// PublicID is the unguessable token for the read-only share link.
	PublicID string

	// ExpectedAmount is the group's collective obligation per period.
	ExpectedAmount decimal.Decimal
	Frequency      engine.Frequency

	CreatedAt time.Time
	Active    bool
}

// Config returns the group's engine-facing configuration.
func (g Group) Config() engine.GroupConfig {
	return engine.GroupConfig{ExpectedAmount: g.ExpectedAmount, Frequency: g.Frequency}
}

// Participant is a group member. Members need no account of their own: a
// display name is enough, the optional email is only used for invitations.
type Participant struct {
	ID          engine.ParticipantID
	GroupID     engine.GroupID
	DisplayName string
	Email       string
	JoinedAt    time.Time
	Active      bool
}

// Record returns the participant's engine-facing snapshot form.
func (p Participant) Record() engine.ParticipantRecord {
	return engine.ParticipantRecord{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		JoinedAt:    p.JoinedAt,
		Active:      p.Active,
	}
}

// Payment is one recorded contribution. Verified is granted by the group
// owner after checking the receipt; only verified payments count toward
// pending amounts and rankings.
type Payment struct {
	ID            string
	GroupID       engine.GroupID
	ParticipantID engine.ParticipantID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Notes         string
	ReceiptURL    string
	Verified      bool
}

// Record returns the payment's engine-facing snapshot form.
func (p Payment) Record() engine.PaymentRecord {
	return engine.PaymentRecord{
		ParticipantID: p.ParticipantID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		Verified:      p.Verified,
	}
}

// Records converts a payment list to the engine's snapshot form.
func Records(payments []Payment) []engine.PaymentRecord {
	out := make([]engine.PaymentRecord, len(payments))
	for i, p := range payments {
		out[i] = p.Record()
	}
	return out
}

// ParticipantRecords converts a participant list to the engine's snapshot form.
func ParticipantRecords(participants []Participant) []engine.ParticipantRecord {
	out := make([]engine.ParticipantRecord, len(participants))
	for i, p := range participants {
		out[i] = p.Record()
	}
	return out
}

// ReminderRun records one pass of the background reminder scheduler, for
// audit and UI display.
type ReminderRun struct {
	ID            string
	RanAt         time.Time
	GroupsChecked int
	Notifications int
	Notes         string
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the persistence boundary for the payment tracker.
type Store interface {
	// Groups
	CreateGroup(ctx context.Context, g Group) error
	Group(ctx context.Context, id engine.GroupID) (Group, error)
	GroupByPublicID(ctx context.Context, publicID string) (Group, error)
	ListGroups(ctx context.Context) ([]Group, error)

	// Participants
	AddParticipant(ctx context.Context, p Participant) error
	Participant(ctx context.Context, id engine.ParticipantID) (Participant, error)
	Participants(ctx context.Context, groupID engine.GroupID, activeOnly bool) ([]Participant, error)
	DeactivateParticipant(ctx context.Context, id engine.ParticipantID) error

	// Payments
	RecordPayment(ctx context.Context, p Payment) error
	VerifyPayment(ctx context.Context, id string) error
	Payments(ctx context.Context, groupID engine.GroupID) ([]Payment, error)
	PaymentsInRange(ctx context.Context, groupID engine.GroupID, from, to time.Time) ([]Payment, error)

	// Reminder scheduler audit trail
	RecordReminderRun(ctx context.Context, run ReminderRun) error
	ReminderRuns(ctx context.Context, limit int) ([]ReminderRun, error)

	Close() error
}
