package matador

import "time"

// Clock supplies the current instant. Engine functions never call time.Now
// directly; everything time-dependent flows through a Clock or an explicit
// "now" argument.
type Clock interface {
	Now() time.Time
}

// TimeSource pairs a clock with the calendar rules (timezone, week start)
// used to cut instants into calendar days.
type TimeSource interface {
	Now() time.Time
	Calendar() Calendar
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Used by tests and by
// callers that want to evaluate a snapshot "as of" some moment.
type FixedClock time.Time

func (f FixedClock) Now() time.Time { return time.Time(f) }

type zonedSource struct {
	clock Clock
	cal   Calendar
}

func (z zonedSource) Now() time.Time     { return z.clock.Now() }
func (z zonedSource) Calendar() Calendar { return z.cal }

// InZone builds a TimeSource from a clock and a timezone. A nil location
// falls back to UTC. Weeks start on Monday.
func InZone(clock Clock, loc *time.Location) TimeSource {
	return zonedSource{clock: clock, cal: NewCalendar(loc)}
}

/* ─── Calendar ───────────────────────────────────────────────────────── */

// Calendar holds the rules for turning instants into calendar days.
// All day arithmetic is done on civil dates in Location, never by
// subtracting raw timestamps, so DST shifts and UTC offsets cannot push an
// entry onto the wrong day.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// NewCalendar returns a Monday-start calendar in loc (UTC when loc is nil).
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, WeekStart: time.Monday}
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// StartOfDay returns local midnight of the day containing t.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.location())
}

// AddDays moves t by n calendar days and returns local midnight of the
// resulting day. AddDate normalises month/year rollover and DST gaps.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	return c.StartOfDay(c.StartOfDay(t).AddDate(0, 0, n))
}

// DaysBetween counts whole calendar days from a to b (negative when b is
// before a). Civil dates are re-anchored at UTC midnight so every day is
// exactly 24h long regardless of the local DST rules. The difference is taken
// in Unix seconds since time.Duration saturates past ~292 years.
func (c Calendar) DaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(c.location()).Date()
	by, bm, bd := b.In(c.location()).Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int((end.Unix() - start.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// SameDay reports whether a and b fall on the same calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	return c.DayKey(a) == c.DayKey(b)
}

// DayKey formats the calendar day containing t as YYYY-MM-DD.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.location()).Format("2006-01-02")
}

// StartOfWeek returns local midnight of the first day of the week
// containing t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	back := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	return c.AddDays(day, -back)
}
