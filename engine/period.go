/*
period.go - Payment frequency and billing period calculation

PURPOSE:
  Maps a payment frequency and a reference day to concrete calendar period
  boundaries. Every amount in this system is owed "per period", so all
  pending-amount and history queries are scoped by these windows.

RULES (given the reference day d):
  weekly     Monday of d's week .. Sunday (7 days)
  biweekly   14 days anchored on even ISO week numbers: the Monday of d's
             week if its ISO week number is even, otherwise one week earlier
  monthly    first .. last day of d's month
  quarterly  first day of d's calendar quarter .. last day of its third month
  yearly     Jan 1 .. Dec 31 of d's year
  other      treated as monthly (fallback, never an error)

INVARIANTS:
  - Both bounds are inclusive.
  - CurrentPeriod(f, d) always contains d.
  - PreviousPeriod(f, d) ends exactly one day before CurrentPeriod(f, d)
    starts: consecutive periods are contiguous with no gap and no overlap.
    The previous period is computed by frequency-specific step-back, not by
    mirroring the current boundaries, so month/quarter length irregularities
    are handled correctly.

KNOWN LIMITATION:
  The biweekly anchor follows ISO week parity. ISO week numbering resets
  irregularly at year boundaries (a year can open in week 52/53 of the prior
  ISO year), so the two-week cadence can shift across New Year. This matches
  the documented behavior and is not special-cased.
*/
package engine

import "time"

// =============================================================================
// FREQUENCY
// =============================================================================

// Frequency is the recurrence cadence of a group's payment obligation.
type Frequency string

const (
	FreqWeekly    Frequency = "weekly"
	FreqBiweekly  Frequency = "biweekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqYearly    Frequency = "yearly"
)

// ParseFrequency resolves a raw frequency string to a known Frequency.
// Unknown values resolve to monthly; this is an availability-over-strictness
// fallback, not an error.
func ParseFrequency(s string) Frequency {
	switch Frequency(s) {
	case FreqWeekly, FreqBiweekly, FreqMonthly, FreqQuarterly, FreqYearly:
		return Frequency(s)
	default:
		return FreqMonthly
	}
}

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FreqWeekly, FreqBiweekly, FreqMonthly, FreqQuarterly, FreqYearly:
		return true
	default:
		return false
	}
}

// Days returns the nominal cycle length in days, used for overdue thresholds.
func (f Frequency) Days() int {
	switch f {
	case FreqWeekly:
		return 7
	case FreqBiweekly:
		return 14
	case FreqMonthly:
		return 30
	case FreqQuarterly:
		return 90
	case FreqYearly:
		return 365
	default:
		return 30
	}
}

// =============================================================================
// PERIOD
// =============================================================================

// Period is one concrete billing window. Both bounds are inclusive whole
// days: Start is the first day of the window and End the last.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains reports whether the day falls within [Start, End].
func (p Period) Contains(tp TimePoint) bool {
	return tp.AfterOrEqual(p.Start) && tp.BeforeOrEqual(p.End)
}

// ContainsTime reports whether an instant's calendar day falls within the period.
func (p Period) ContainsTime(t time.Time) bool {
	return p.Contains(TimePointOf(t))
}

// Bounds returns the period as instant bounds: midnight at the start of the
// first day and the last representable instant of the final day. Useful for
// datetime range queries against stored payment timestamps.
func (p Period) Bounds() (time.Time, time.Time) {
	return p.Start.Time(), p.End.AddDays(1).Time().Add(-time.Nanosecond)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// PERIOD CALCULATOR
// =============================================================================

// CurrentPeriod returns the billing period containing the reference day.
func CurrentPeriod(f Frequency, ref TimePoint) Period {
	switch f {
	case FreqWeekly:
		start := ref.AddDays(-mondayIndex(ref.Weekday()))
		return Period{Start: start, End: start.AddDays(6)}

	case FreqBiweekly:
		weekStart := ref.AddDays(-mondayIndex(ref.Weekday()))
		_, isoWeek := weekStart.ISOWeek()
		start := weekStart
		if isoWeek%2 != 0 {
			start = weekStart.AddDays(-7)
		}
		return Period{Start: start, End: start.AddDays(13)}

	case FreqQuarterly:
		quarter := (int(ref.Month()) - 1) / 3
		start := NewTimePoint(ref.Year(), time.Month(quarter*3+1), 1)
		return Period{Start: start, End: start.AddMonths(3).AddDays(-1)}

	case FreqYearly:
		return Period{
			Start: NewTimePoint(ref.Year(), time.January, 1),
			End:   NewTimePoint(ref.Year(), time.December, 31),
		}

	case FreqMonthly:
		fallthrough
	default:
		// Unknown frequencies fall back to monthly.
		start := StartOfMonth(ref.Year(), ref.Month())
		return Period{Start: start, End: start.AddMonths(1).AddDays(-1)}
	}
}

// PreviousPeriod returns the period immediately preceding CurrentPeriod(f, ref).
// Each frequency steps back by its own rule so that the previous period's End
// is always the day before the current period's Start.
func PreviousPeriod(f Frequency, ref TimePoint) Period {
	current := CurrentPeriod(f, ref)

	switch f {
	case FreqWeekly:
		return Period{Start: current.Start.AddDays(-7), End: current.End.AddDays(-7)}

	case FreqBiweekly:
		return Period{Start: current.Start.AddDays(-14), End: current.End.AddDays(-14)}

	case FreqQuarterly:
		end := current.Start.AddDays(-1)
		quarter := (int(end.Month()) - 1) / 3
		start := NewTimePoint(end.Year(), time.Month(quarter*3+1), 1)
		return Period{Start: start, End: end}

	case FreqYearly:
		year := current.Start.Year() - 1
		return Period{
			Start: NewTimePoint(year, time.January, 1),
			End:   NewTimePoint(year, time.December, 31),
		}

	case FreqMonthly:
		fallthrough
	default:
		end := current.Start.AddDays(-1)
		return Period{Start: StartOfMonth(end.Year(), end.Month()), End: end}
	}
}
