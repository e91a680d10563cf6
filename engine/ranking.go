/*
ranking.go - "Who pays next" ordering by time since last contribution

PURPOSE:
  Ranks a group's active participants by how long it has been since each
  one last made a verified payment, most-overdue first. The ranking is the
  input for the next-payer display and for rotation reassignment.

RULES:
  - Only verified payments count. The latest verified payment date wins,
    regardless of which billing period it fell in.
  - A participant who has never paid is ranked by tenure (days since they
    joined), not treated as infinitely overdue. This keeps rankings bounded
    and comparable.
  - Inactive participants are excluded.
  - AmountDue on every entry is the group's configured period amount.
  - Ties keep input order (stable sort); callers must not rely on tie order.

OVERDUE CLASSIFICATION:
  Being ranked first does not by itself mean "overdue". A participant is
  overdue when their days-since count exceeds the frequency's nominal cycle
  length scaled by a severity factor chosen by the consumer: the strict
  dashboard list uses 1.5 cycles, the notification trigger 2 cycles.
*/
package engine

import "sort"

// Severity factors observed by engine consumers. These are conventions,
// not invariants: any positive factor is a valid choice.
const (
	SeverityStrict       = 1.5
	SeverityNotification = 2.0
)

// Rank orders the group's active participants by days since their last
// verified contribution, descending. reference is the day the ranking is
// computed for.
func Rank(participants []ParticipantRecord, payments []PaymentRecord, cfg GroupConfig, reference TimePoint) []RankingEntry {
	// Latest verified payment day per participant.
	lastPaid := make(map[ParticipantID]TimePoint, len(participants))
	for _, p := range payments {
		if !p.Verified {
			continue
		}
		day := TimePointOf(p.PaymentDate)
		if prev, ok := lastPaid[p.ParticipantID]; !ok || day.After(prev) {
			lastPaid[p.ParticipantID] = day
		}
	}

	entries := make([]RankingEntry, 0, len(participants))
	for _, part := range participants {
		if !part.Active {
			continue
		}

		entry := RankingEntry{
			ParticipantID: part.ID,
			DisplayName:   part.DisplayName,
			AmountDue:     cfg.ExpectedAmount,
		}

		if last, ok := lastPaid[part.ID]; ok {
			entry.DaysSinceLast = DaysBetween(last, reference)
			entry.LastContribution = &last
		} else {
			entry.DaysSinceLast = DaysBetween(TimePointOf(part.JoinedAt), reference)
		}

		entries = append(entries, entry)
	}

	// Most overdue first. Stable so equal counts keep input order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysSinceLast > entries[j].DaysSinceLast
	})

	return entries
}

// OverdueThreshold returns the days-since count beyond which a participant
// is considered overdue, for the given frequency and severity factor.
func OverdueThreshold(f Frequency, severity float64) int {
	return int(float64(f.Days()) * severity)
}

// IsOverdue reports whether the entry exceeds the overdue threshold for the
// frequency at the given severity factor.
func (e RankingEntry) IsOverdue(f Frequency, severity float64) bool {
	return e.DaysSinceLast > OverdueThreshold(f, severity)
}
