package matador

import "time"

// maxStreakDays bounds the backward walk so corrupt data cannot loop forever.
const maxStreakDays = 365

// HasActivityOnDate reports whether the user logged on date's calendar day:
// any meal, or a weight entry recorded on the same day it applies to.
// Backdated weigh-ins never count.
func HasActivityOnDate(weights []WeightLogEntry, meals []MealLogEntry, date time.Time, cal Calendar) bool {
	key := cal.DayKey(date)
	for _, m := range meals {
		if cal.DayKey(m.LoggedAt) == key {
			return true
		}
	}
	for _, w := range weights {
		if !w.IsBackdated(cal) && cal.DayKey(w.LoggedAt) == key {
			return true
		}
	}
	return false
}

// activeDays indexes every calendar day with streak-eligible activity.
func activeDays(weights []WeightLogEntry, meals []MealLogEntry, cal Calendar) map[string]bool {
	days := make(map[string]bool, len(weights)+len(meals))
	for _, m := range meals {
		days[cal.DayKey(m.LoggedAt)] = true
	}
	for _, w := range weights {
		if !w.IsBackdated(cal) {
			days[cal.DayKey(w.LoggedAt)] = true
		}
	}
	return days
}

// ComputeStreak counts consecutive active days ending at today. A day
// without activity today resets the streak to 0.
func ComputeStreak(weights []WeightLogEntry, meals []MealLogEntry, today time.Time, cal Calendar) int {
	days := activeDays(weights, meals, cal)
	if !days[cal.DayKey(today)] {
		return 0
	}

	streak := 1
	day := cal.StartOfDay(today)
	for i := 0; i < maxStreakDays; i++ {
		day = cal.AddDays(day, -1)
		if !days[cal.DayKey(day)] {
			break
		}
		streak++
	}
	return streak
}
