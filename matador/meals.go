package matador

import "time"

// MealLogEntry is one logged food item.
type MealLogEntry struct {
	UserID       int
	CaloriesKcal int
	ProteinG     float64
	CarbsG       float64
	FatG         float64
	LoggedAt     time.Time
}

// Totals is the summed intake for a day.
type Totals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	Entries  int     `json:"entries"`
}

// Add folds one entry into the totals.
func (t *Totals) Add(m MealLogEntry) {
	t.Calories += m.CaloriesKcal
	t.ProteinG += m.ProteinG
	t.CarbsG += m.CarbsG
	t.FatG += m.FatG
	t.Entries++
}

// DailyTotals sums every meal whose LoggedAt falls on day's calendar day.
func DailyTotals(meals []MealLogEntry, day time.Time, cal Calendar) Totals {
	var t Totals
	key := cal.DayKey(day)
	for _, m := range meals {
		if cal.DayKey(m.LoggedAt) == key {
			t.Add(m)
		}
	}
	return t
}
