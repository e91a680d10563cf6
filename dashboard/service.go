/*
Package dashboard composes the store and the engine into the views the
payment tracker shows.

PURPOSE:
  Every method follows the same shape: load a snapshot of one or more
  groups from the store, hand it to the engine with an explicit reference
  day, and package the computed periods, pending amounts, and rankings
  into display-ready values. The service holds no state of its own.

REFERENCE TIME:
  All methods accept a reference instant; passing the zero time means
  "now". Threading the reference through keeps every computation
  deterministic and testable without mocking a clock.
*/
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuelCebreiro/payFriendly/engine"
	"github.com/ManuelCebreiro/payFriendly/store"
)

// Service computes dashboard views over stored groups.
type Service struct {
	Store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{Store: s}
}

func refOrNow(at time.Time) engine.TimePoint {
	if at.IsZero() {
		return engine.Today()
	}
	return engine.TimePointOf(at)
}

// =============================================================================
// VIEW TYPES
// =============================================================================

// PeriodStats describes one billing window of a group.
type PeriodStats struct {
	Period    engine.Period
	Expected  decimal.Decimal
	Collected decimal.Decimal
	Pending   decimal.Decimal
	Payments  []PaymentView
}

// PaymentView is a payment enriched with the payer's display name.
type PaymentView struct {
	ID            string
	ParticipantID engine.ParticipantID
	Name          string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Notes         string
	ReceiptURL    string
	Verified      bool
}

// GroupStats is the per-group dashboard detail view.
type GroupStats struct {
	Group             store.Group
	CurrentPeriod     PeriodStats
	PreviousPeriod    PeriodStats
	TotalCollected    decimal.Decimal
	ParticipantCount  int
	TotalPaymentCount int
}

// NextPayer is a ranking entry tagged with its group.
type NextPayer struct {
	engine.RankingEntry
	GroupID   engine.GroupID
	GroupName string
}

// LastPayer is one previous-period payment, newest first.
type LastPayer struct {
	Name          string
	GroupID       engine.GroupID
	GroupName     string
	ParticipantID engine.ParticipantID
	Amount        decimal.Decimal
	PaymentDate   time.Time
}

// OverdueParticipant is a strict-threshold overdue listing entry.
type OverdueParticipant struct {
	Name            string
	GroupID         engine.GroupID
	GroupName       string
	ParticipantID   engine.ParticipantID
	DaysOverdue     int
	AmountDue       decimal.Decimal
	LastPaymentDate *time.Time
}

// GroupSummary is the per-group line of the payment summary.
type GroupSummary struct {
	GroupID       engine.GroupID
	GroupName     string
	Expected      decimal.Decimal
	Frequency     engine.Frequency
	TotalPaid     decimal.Decimal
	PaymentCount  int
	LastPayment   *time.Time
	DaysSinceLast int
	IsDue         bool
}

// ReassignOutcome is the result of skipping a participant's turn.
type ReassignOutcome struct {
	GroupID engine.GroupID
	Skipped NextPayer
	Next    *NextPayer
	Ranking []NextPayer
}

// PublicOverdueView is the read-only share-link view of a group.
type PublicOverdueView struct {
	GroupName     string
	Frequency     engine.Frequency
	Expected      decimal.Decimal
	Collected     decimal.Decimal
	Pending       decimal.Decimal
	CurrentPeriod engine.Period
	Overdue       []OverdueParticipant
}

// =============================================================================
// GROUP STATS
// =============================================================================

// GroupStats returns the group's detail view organized by billing period.
func (s *Service) GroupStats(ctx context.Context, groupID engine.GroupID, at time.Time) (*GroupStats, error) {
	ref := refOrNow(at)

	group, err := s.Store.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	participants, err := s.Store.Participants(ctx, groupID, true)
	if err != nil {
		return nil, err
	}
	payments, err := s.Store.Payments(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := displayNames(participants)
	records := store.Records(payments)

	current := engine.CurrentPeriod(group.Frequency, ref)
	previous := engine.PreviousPeriod(group.Frequency, ref)

	total := decimal.Zero
	for _, p := range payments {
		if p.Verified {
			total = total.Add(p.Amount)
		}
	}

	return &GroupStats{
		Group:             group,
		CurrentPeriod:     s.periodStats(group, current, payments, records, names),
		PreviousPeriod:    s.periodStats(group, previous, payments, records, names),
		TotalCollected:    total,
		ParticipantCount:  len(participants),
		TotalPaymentCount: len(payments),
	}, nil
}

func (s *Service) periodStats(group store.Group, period engine.Period, payments []store.Payment, records []engine.PaymentRecord, names map[engine.ParticipantID]string) PeriodStats {
	stats := PeriodStats{
		Period:    period,
		Expected:  group.ExpectedAmount,
		Collected: engine.CollectedAmount(records, period),
		Pending:   engine.PendingAmount(group.ExpectedAmount, records, period),
	}
	for _, p := range payments {
		if !period.ContainsTime(p.PaymentDate) {
			continue
		}
		stats.Payments = append(stats.Payments, paymentView(p, names))
	}
	return stats
}

// =============================================================================
// NEXT PAYERS
// =============================================================================

// NextPayers ranks participants by time since their last verified payment,
// most overdue first, across all groups or one group when groupID is set.
func (s *Service) NextPayers(ctx context.Context, groupID engine.GroupID, limit int, at time.Time) ([]NextPayer, error) {
	ref := refOrNow(at)

	groups, err := s.targetGroups(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var payers []NextPayer
	for _, group := range groups {
		ranking, err := s.rankGroup(ctx, group, ref)
		if err != nil {
			return nil, err
		}
		payers = append(payers, ranking...)
	}

	// Merge rankings across groups, keeping most-overdue-first order.
	sortNextPayers(payers)
	return clip(payers, limit), nil
}

func (s *Service) rankGroup(ctx context.Context, group store.Group, ref engine.TimePoint) ([]NextPayer, error) {
	participants, err := s.Store.Participants(ctx, group.ID, true)
	if err != nil {
		return nil, err
	}
	payments, err := s.Store.Payments(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	ranking := engine.Rank(store.ParticipantRecords(participants), store.Records(payments), group.Config(), ref)

	payers := make([]NextPayer, len(ranking))
	for i, entry := range ranking {
		payers[i] = NextPayer{RankingEntry: entry, GroupID: group.ID, GroupName: group.Name}
	}
	return payers, nil
}

// =============================================================================
// LAST PAYERS
// =============================================================================

// LastPayers lists the previous period's payments, newest first.
func (s *Service) LastPayers(ctx context.Context, groupID engine.GroupID, limit int, at time.Time) ([]LastPayer, error) {
	ref := refOrNow(at)

	groups, err := s.targetGroups(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var items []LastPayer
	for _, group := range groups {
		from, to := engine.PreviousPeriod(group.Frequency, ref).Bounds()
		payments, err := s.Store.PaymentsInRange(ctx, group.ID, from, to)
		if err != nil {
			return nil, err
		}
		participants, err := s.Store.Participants(ctx, group.ID, false)
		if err != nil {
			return nil, err
		}
		names := displayNames(participants)

		for _, p := range payments {
			items = append(items, LastPayer{
				Name:          nameFor(names, p.ParticipantID),
				GroupID:       group.ID,
				GroupName:     group.Name,
				ParticipantID: p.ParticipantID,
				Amount:        p.Amount,
				PaymentDate:   p.PaymentDate,
			})
		}
	}

	sortLastPayers(items)
	return clip(items, limit), nil
}

// =============================================================================
// OVERDUE PARTICIPANTS
// =============================================================================

// OverdueParticipants lists participants past the strict overdue threshold
// (1.5 payment cycles), most overdue first.
func (s *Service) OverdueParticipants(ctx context.Context, limit int, at time.Time) ([]OverdueParticipant, error) {
	ref := refOrNow(at)

	groups, err := s.Store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	var overdue []OverdueParticipant
	for _, group := range groups {
		ranking, err := s.rankGroup(ctx, group, ref)
		if err != nil {
			return nil, err
		}
		for _, payer := range ranking {
			if !payer.IsOverdue(group.Frequency, engine.SeverityStrict) {
				continue
			}
			entry := OverdueParticipant{
				Name:          payer.DisplayName,
				GroupID:       group.ID,
				GroupName:     group.Name,
				ParticipantID: payer.ParticipantID,
				DaysOverdue:   payer.DaysSinceLast,
				AmountDue:     payer.AmountDue,
			}
			if payer.LastContribution != nil {
				t := payer.LastContribution.Time()
				entry.LastPaymentDate = &t
			}
			overdue = append(overdue, entry)
		}
	}

	sortOverdue(overdue)
	return clip(overdue, limit), nil
}

// =============================================================================
// PAYMENT SUMMARY
// =============================================================================

// PaymentSummary returns per-group contribution totals with a due flag based
// on how long ago the group last saw a verified payment.
func (s *Service) PaymentSummary(ctx context.Context, at time.Time) ([]GroupSummary, error) {
	ref := refOrNow(at)

	groups, err := s.Store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for _, group := range groups {
		payments, err := s.Store.Payments(ctx, group.ID)
		if err != nil {
			return nil, err
		}

		summary := GroupSummary{
			GroupID:   group.ID,
			GroupName: group.Name,
			Expected:  group.ExpectedAmount,
			Frequency: group.Frequency,
			TotalPaid: decimal.Zero,
		}
		var last time.Time
		for _, p := range payments {
			if !p.Verified {
				continue
			}
			summary.TotalPaid = summary.TotalPaid.Add(p.Amount)
			summary.PaymentCount++
			if p.PaymentDate.After(last) {
				last = p.PaymentDate
			}
		}
		if !last.IsZero() {
			summary.LastPayment = &last
			summary.DaysSinceLast = engine.DaysBetween(engine.TimePointOf(last), ref)
		}
		summary.IsDue = summary.LastPayment == nil || summary.DaysSinceLast > group.Frequency.Days()

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// =============================================================================
// REASSIGNMENT
// =============================================================================

// ReassignPayer skips a participant's turn in the group's ranking and
// returns who pays instead. Nothing is persisted: reassignment is a
// one-shot computation over the current payment history.
func (s *Service) ReassignPayer(ctx context.Context, groupID engine.GroupID, skipID engine.ParticipantID, at time.Time) (*ReassignOutcome, error) {
	ref := refOrNow(at)

	group, err := s.Store.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ranking, err := s.rankGroup(ctx, group, ref)
	if err != nil {
		return nil, err
	}

	entries := make([]engine.RankingEntry, len(ranking))
	for i, payer := range ranking {
		entries[i] = payer.RankingEntry
	}

	result, err := engine.Reassign(entries, skipID)
	if err != nil {
		return nil, fmt.Errorf("reassign in group %s: %w", groupID, err)
	}

	outcome := &ReassignOutcome{
		GroupID: groupID,
		Skipped: NextPayer{RankingEntry: result.Skipped, GroupID: group.ID, GroupName: group.Name},
		Ranking: make([]NextPayer, len(result.Ranking)),
	}
	if result.Next != nil {
		outcome.Next = &NextPayer{RankingEntry: *result.Next, GroupID: group.ID, GroupName: group.Name}
	}
	for i, entry := range result.Ranking {
		outcome.Ranking[i] = NextPayer{RankingEntry: entry, GroupID: group.ID, GroupName: group.Name}
	}
	return outcome, nil
}

// =============================================================================
// PUBLIC SHARE VIEW
// =============================================================================

// PublicOverdue resolves a share link to the group's read-only overdue view.
func (s *Service) PublicOverdue(ctx context.Context, publicID string, at time.Time) (*PublicOverdueView, error) {
	ref := refOrNow(at)

	group, err := s.Store.GroupByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	payments, err := s.Store.Payments(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	records := store.Records(payments)
	period := engine.CurrentPeriod(group.Frequency, ref)

	ranking, err := s.rankGroup(ctx, group, ref)
	if err != nil {
		return nil, err
	}

	view := &PublicOverdueView{
		GroupName:     group.Name,
		Frequency:     group.Frequency,
		Expected:      group.ExpectedAmount,
		Collected:     engine.CollectedAmount(records, period),
		Pending:       engine.PendingAmount(group.ExpectedAmount, records, period),
		CurrentPeriod: period,
	}
	for _, payer := range ranking {
		if !payer.IsOverdue(group.Frequency, engine.SeverityStrict) {
			continue
		}
		entry := OverdueParticipant{
			Name:          payer.DisplayName,
			GroupID:       group.ID,
			GroupName:     group.Name,
			ParticipantID: payer.ParticipantID,
			DaysOverdue:   payer.DaysSinceLast,
			AmountDue:     payer.AmountDue,
		}
		if payer.LastContribution != nil {
			t := payer.LastContribution.Time()
			entry.LastPaymentDate = &t
		}
		view.Overdue = append(view.Overdue, entry)
	}
	return view, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Service) targetGroups(ctx context.Context, groupID engine.GroupID) ([]store.Group, error) {
	if groupID != "" {
		group, err := s.Store.Group(ctx, groupID)
		if err != nil {
			return nil, err
		}
		return []store.Group{group}, nil
	}
	return s.Store.ListGroups(ctx)
}

func displayNames(participants []store.Participant) map[engine.ParticipantID]string {
	names := make(map[engine.ParticipantID]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.DisplayName
	}
	return names
}

func nameFor(names map[engine.ParticipantID]string, id engine.ParticipantID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "Participant"
}

func paymentView(p store.Payment, names map[engine.ParticipantID]string) PaymentView {
	return PaymentView{
		ID:            p.ID,
		ParticipantID: p.ParticipantID,
		Name:          nameFor(names, p.ParticipantID),
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		Notes:         p.Notes,
		ReceiptURL:    p.ReceiptURL,
		Verified:      p.Verified,
	}
}

func sortNextPayers(payers []NextPayer) {
	sort.SliceStable(payers, func(i, j int) bool {
		return payers[i].DaysSinceLast > payers[j].DaysSinceLast
	})
}

func sortLastPayers(items []LastPayer) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PaymentDate.After(items[j].PaymentDate)
	})
}

func sortOverdue(items []OverdueParticipant) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysOverdue > items[j].DaysOverdue
	})
}

func clip[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
