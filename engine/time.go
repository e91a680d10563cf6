package engine

import "time"

// =============================================================================
// TIME POINT - Day-granularity instant
// =============================================================================

// TimePoint is a calendar day in UTC. All period arithmetic and all
// "days since" calculations operate at day granularity: two payments on
// the same day are the same distance from any reference, regardless of
// their wall-clock times.
type TimePoint struct {
	t time.Time
}

// NewTimePoint builds a TimePoint for a calendar date.
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// TimePointOf truncates an instant to its UTC calendar day.
func TimePointOf(t time.Time) TimePoint {
	u := t.UTC()
	return NewTimePoint(u.Year(), u.Month(), u.Day())
}

// Today returns the current UTC calendar day.
func Today() TimePoint {
	return TimePointOf(time.Now())
}

// Time returns the underlying instant (midnight UTC of the day).
func (tp TimePoint) Time() time.Time { return tp.t }

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.t.Before(other.t) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.t.After(other.t) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.t.Equal(other.t) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.t.After(other.t) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.t.Before(other.t) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{t: tp.t.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{t: tp.t.AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{t: tp.t.AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.t.Year() }
func (tp TimePoint) Month() time.Month     { return tp.t.Month() }
func (tp TimePoint) Day() int              { return tp.t.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.t.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.t.IsZero() }

// ISOWeek returns the ISO 8601 year and week number of the day.
func (tp TimePoint) ISOWeek() (year, week int) { return tp.t.ISOWeek() }

func (tp TimePoint) String() string { return tp.t.Format("2006-01-02") }

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the number of whole days from one day to another.
// Negative when to precedes from.
func DaysBetween(from, to TimePoint) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// StartOfMonth returns the first day of the given month.
func StartOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, 1)
}

// mondayIndex maps a weekday to its offset from Monday (Monday = 0, Sunday = 6).
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
