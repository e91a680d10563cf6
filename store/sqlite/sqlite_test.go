package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelCebreiro/payFriendly/engine"
	"github.com/ManuelCebreiro/payFriendly/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testGroup(id string) store.Group {
	return store.Group{
		ID:             engine.GroupID(id),
		Name:           "Flat Rent",
		Description:    "Monthly rent split",
		PublicID:       "pub-" + id,
		ExpectedAmount: decimal.NewFromInt(300),
		Frequency:      engine.FreqMonthly,
		CreatedAt:      time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC),
		Active:         true,
	}
}

// =============================================================================
// GROUPS
// =============================================================================

func TestGroupRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateGroup(ctx, testGroup("g1")))

	got, err := s.Group(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Flat Rent", got.Name)
	assert.Equal(t, "pub-g1", got.PublicID)
	assert.True(t, got.ExpectedAmount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, engine.FreqMonthly, got.Frequency)
	assert.True(t, got.Active)
	assert.True(t, got.CreatedAt.Equal(time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)))

	byPublic, err := s.GroupByPublicID(ctx, "pub-g1")
	require.NoError(t, err)
	assert.Equal(t, engine.GroupID("g1"), byPublic.ID)

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestGroupNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Group(ctx, "ghost")
	assert.True(t, engine.IsNotFound(err))

	_, err = s.GroupByPublicID(ctx, "nope")
	assert.True(t, engine.IsNotFound(err))
}

// =============================================================================
// PARTICIPANTS
// =============================================================================

func TestParticipantLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateGroup(ctx, testGroup("g1")))

	ana := store.Participant{
		ID: "ana", GroupID: "g1", DisplayName: "Ana", Email: "ana@example.com",
		JoinedAt: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), Active: true,
	}
	bruno := store.Participant{
		ID: "bruno", GroupID: "g1", DisplayName: "Bruno",
		JoinedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), Active: true,
	}
	require.NoError(t, s.AddParticipant(ctx, ana))
	require.NoError(t, s.AddParticipant(ctx, bruno))

	got, err := s.Participant(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	active, err := s.Participants(ctx, "g1", true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	// Ordered by join date.
	assert.Equal(t, engine.ParticipantID("ana"), active[0].ID)

	require.NoError(t, s.DeactivateParticipant(ctx, "ana"))

	active, err = s.Participants(ctx, "g1", true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, engine.ParticipantID("bruno"), active[0].ID)

	all, err := s.Participants(ctx, "g1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.True(t, engine.IsNotFound(s.DeactivateParticipant(ctx, "ghost")))
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestPaymentLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateGroup(ctx, testGroup("g1")))
	require.NoError(t, s.AddParticipant(ctx, store.Participant{
		ID: "ana", GroupID: "g1", DisplayName: "Ana",
		JoinedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), Active: true,
	}))

	older := store.Payment{
		ID: "p1", GroupID: "g1", ParticipantID: "ana",
		Amount:      decimal.RequireFromString("99.95"),
		PaymentDate: time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC),
		Notes:       "bank transfer",
	}
	newer := store.Payment{
		ID: "p2", GroupID: "g1", ParticipantID: "ana",
		Amount:      decimal.NewFromInt(300),
		PaymentDate: time.Date(2024, time.June, 2, 9, 0, 0, 0, time.UTC),
		ReceiptURL:  "https://example.com/receipt.png",
	}
	require.NoError(t, s.RecordPayment(ctx, older))
	require.NoError(t, s.RecordPayment(ctx, newer))

	payments, err := s.Payments(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	// Newest first.
	assert.Equal(t, "p2", payments[0].ID)
	assert.False(t, payments[0].Verified)
	assert.Equal(t, "https://example.com/receipt.png", payments[0].ReceiptURL)
	assert.True(t, payments[1].Amount.Equal(decimal.RequireFromString("99.95")))

	require.NoError(t, s.VerifyPayment(ctx, "p1"))

	payments, err = s.Payments(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, payments[1].Verified)
	assert.False(t, payments[0].Verified)

	assert.True(t, engine.IsNotFound(s.VerifyPayment(ctx, "ghost")))
}

func TestPaymentsInRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateGroup(ctx, testGroup("g1")))

	for i, date := range []time.Time{
		time.Date(2024, time.May, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 30, 23, 0, 0, 0, time.UTC),
		time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, s.RecordPayment(ctx, store.Payment{
			ID: string(rune('a' + i)), GroupID: "g1", ParticipantID: "ana",
			Amount: decimal.NewFromInt(10), PaymentDate: date,
		}))
	}

	from, to := engine.CurrentPeriod(engine.FreqMonthly, engine.NewTimePoint(2024, time.June, 15)).Bounds()
	payments, err := s.PaymentsInRange(ctx, "g1", from, to)
	require.NoError(t, err)

	// Only the two June payments fall inside the period bounds.
	require.Len(t, payments, 2)
	assert.Equal(t, "c", payments[0].ID)
	assert.Equal(t, "b", payments[1].ID)
}

// =============================================================================
// REMINDER RUNS
// =============================================================================

func TestReminderRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordReminderRun(ctx, store.ReminderRun{
			ID:            string(rune('a' + i)),
			RanAt:         time.Date(2024, time.June, 1+i, 8, 0, 0, 0, time.UTC),
			GroupsChecked: i + 1,
			Notifications: i,
		}))
	}

	runs, err := s.ReminderRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Newest first.
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, 3, runs[0].GroupsChecked)
}
