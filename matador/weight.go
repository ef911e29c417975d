package matador

import "time"

// WeightLogEntry is one weigh-in. LoggedAt is the day the weight applies
// to; CreatedAt is when it was actually recorded.
type WeightLogEntry struct {
	UserID    int
	WeightKg  float64
	LoggedAt  time.Time
	CreatedAt time.Time
}

// IsBackdated reports whether the entry was recorded on a different
// calendar day than the one it applies to.
func (e WeightLogEntry) IsBackdated(cal Calendar) bool {
	return !cal.SameDay(e.LoggedAt, e.CreatedAt)
}

type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

const trendWindowDays = 7

// newerThan orders entries by LoggedAt, then CreatedAt so that the
// most recently recorded of two same-instant entries wins.
func newerThan(a, b WeightLogEntry) bool {
	if !a.LoggedAt.Equal(b.LoggedAt) {
		return a.LoggedAt.After(b.LoggedAt)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// LatestEntry returns the most recent entry by LoggedAt.
func LatestEntry(entries []WeightLogEntry) (WeightLogEntry, bool) {
	if len(entries) == 0 {
		return WeightLogEntry{}, false
	}
	latest := entries[0]
	for _, e := range entries[1:] {
		if newerThan(e, latest) {
			latest = e
		}
	}
	return latest, true
}

// LatestWeight returns the weight of the most recent entry.
func LatestWeight(entries []WeightLogEntry) (float64, bool) {
	e, ok := LatestEntry(entries)
	return e.WeightKg, ok
}

// WeightForDay returns the display weight for a calendar day: the most
// recently created entry whose LoggedAt falls on that day.
func WeightForDay(entries []WeightLogEntry, day time.Time, cal Calendar) (WeightLogEntry, bool) {
	var found WeightLogEntry
	ok := false
	for _, e := range entries {
		if !cal.SameDay(e.LoggedAt, day) {
			continue
		}
		if !ok || e.CreatedAt.After(found.CreatedAt) {
			found = e
			ok = true
		}
	}
	return found, ok
}

func inWindow(e WeightLogEntry, days int, ref time.Time) bool {
	from := ref.AddDate(0, 0, -days)
	return !e.LoggedAt.Before(from) && !e.LoggedAt.After(ref)
}

// CountInWindow counts entries with LoggedAt in [ref-days, ref].
func CountInWindow(entries []WeightLogEntry, days int, ref time.Time) int {
	n := 0
	for _, e := range entries {
		if inWindow(e, days, ref) {
			n++
		}
	}
	return n
}

// AverageOverWindow is the mean weight of entries with LoggedAt in
// [ref-days, ref]. ok=false when the window is empty.
func AverageOverWindow(entries []WeightLogEntry, days int, ref time.Time) (float64, bool) {
	var sum float64
	n := 0
	for _, e := range entries {
		if inWindow(e, days, ref) {
			sum += e.WeightKg
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// WeightTrend compares the 7-day average ending at ref with the one ending
// a day earlier. With fewer than two entries in the current window the
// trend is TrendDown.
func WeightTrend(entries []WeightLogEntry, ref time.Time) Trend {
	if CountInWindow(entries, trendWindowDays, ref) < 2 {
		return TrendDown
	}
	today, _ := AverageOverWindow(entries, trendWindowDays, ref)
	yesterday, ok := AverageOverWindow(entries, trendWindowDays, ref.AddDate(0, 0, -1))
	if ok && today > yesterday {
		return TrendUp
	}
	return TrendDown
}

// WeightStats bundles the weight figures shown on the dashboard.
type WeightStats struct {
	LatestKg       *float64 `json:"latest_kg"`
	AvgTodayKg     *float64 `json:"avg_7d_kg"`
	AvgYesterdayKg *float64 `json:"avg_7d_prev_kg"`
	Trend          Trend    `json:"trend"`
	EntriesIn7d    int      `json:"entries_7d"`
}

// AnalyzeWeights computes WeightStats as of ref.
func AnalyzeWeights(entries []WeightLogEntry, ref time.Time) WeightStats {
	stats := WeightStats{
		Trend:       WeightTrend(entries, ref),
		EntriesIn7d: CountInWindow(entries, trendWindowDays, ref),
	}
	if w, ok := LatestWeight(entries); ok {
		stats.LatestKg = &w
	}
	if avg, ok := AverageOverWindow(entries, trendWindowDays, ref); ok {
		stats.AvgTodayKg = &avg
	}
	if avg, ok := AverageOverWindow(entries, trendWindowDays, ref.AddDate(0, 0, -1)); ok {
		stats.AvgYesterdayKg = &avg
	}
	return stats
}
