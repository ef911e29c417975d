package matador

import (
	"context"
	"errors"
	"testing"
	"time"
)

/* ─── Fakes ──────────────────────────────────────────────────────────── */

type fakeProfiles struct {
	profile *UserProfile
	err     error
}

func (f fakeProfiles) FetchProfile(ctx context.Context, userID int) (*UserProfile, error) {
	return f.profile, f.err
}

type fakeWeights struct {
	entries []WeightLogEntry
	err     error
}

func (f fakeWeights) FetchAll(ctx context.Context, userID int) ([]WeightLogEntry, error) {
	return f.entries, f.err
}

type fakeMeals struct {
	entries []MealLogEntry
	err     error
}

func (f fakeMeals) FetchAll(ctx context.Context, userID int) ([]MealLogEntry, error) {
	return f.entries, f.err
}

func (f fakeMeals) FetchForDay(ctx context.Context, userID int, day time.Time) ([]MealLogEntry, error) {
	cal := NewCalendar(day.Location())
	var out []MealLogEntry
	for _, m := range f.entries {
		if cal.SameDay(m.LoggedAt, day) {
			out = append(out, m)
		}
	}
	return out, f.err
}

var dashNow = time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)

// exampleProfile is the 180cm/80kg/30y moderately active male (TDEE 2759).
func exampleProfile(cycleStart *time.Time) *UserProfile {
	g := GenderMale
	h, w, age := 180.0, 80.0, 30
	lvl := ModeratelyActive
	goal := GoalLoseWeight
	return &UserProfile{
		UserID:         1,
		Gender:         &g,
		HeightCm:       &h,
		WeightKg:       &w,
		Age:            &age,
		ActivityLevel:  &lvl,
		Goal:           &goal,
		CycleStartDate: cycleStart,
	}
}

func snapshotFor(p *UserProfile, weights []WeightLogEntry, meals []MealLogEntry) Snapshot {
	return ComputeSnapshot(Inputs{
		Profile:  p,
		Weights:  weights,
		Meals:    meals,
		Now:      dashNow,
		Calendar: NewCalendar(time.UTC),
	})
}

/* ─── ComputeSnapshot ────────────────────────────────────────────────── */

// TestComputeSnapshot_DietPhase: day 1 of a cycle with the example profile.
func TestComputeSnapshot_DietPhase(t *testing.T) {
	start := dashNow.Add(-2 * time.Hour)
	snap := snapshotFor(exampleProfile(&start), nil, nil)

	if snap.TDEE != 2759 || snap.DefaultTDEEUsed {
		t.Errorf("tdee = %d (default=%v), want 2759 computed", snap.TDEE, snap.DefaultTDEEUsed)
	}
	if snap.BMR == nil || *snap.BMR != 1780 {
		t.Errorf("bmr = %v, want 1780", snap.BMR)
	}
	if snap.Cycle.DayInCycle != 1 || !snap.Cycle.IsDietPhase() {
		t.Errorf("cycle = %+v, want diet day 1", snap.Cycle)
	}
	if snap.CalorieTarget != 1848 {
		t.Errorf("target = %d, want 1848", snap.CalorieTarget)
	}
	if snap.MacroTargets != (Macros{ProteinG: 160, CarbsG: 122, FatG: 80}) {
		t.Errorf("macros = %+v, want 160/122/80", snap.MacroTargets)
	}
	if snap.WeightReminder {
		t.Error("weight reminder should be off on cycle day 1")
	}
}

// TestComputeSnapshot_MaintenancePhase: day 15 eats full TDEE.
func TestComputeSnapshot_MaintenancePhase(t *testing.T) {
	start := dashNow.AddDate(0, 0, -14)
	snap := snapshotFor(exampleProfile(&start), nil, nil)
	if !snap.Cycle.IsMaintenancePhase() || snap.CalorieTarget != 2759 {
		t.Errorf("got phase=%s target=%d, want maintenance 2759", snap.Cycle.Phase, snap.CalorieTarget)
	}
	if !snap.WeightReminder {
		t.Error("weight reminder should be on with no weight logged today")
	}
}

// TestComputeSnapshot_NoCycleUsesGoal falls back to the goal table.
func TestComputeSnapshot_NoCycleUsesGoal(t *testing.T) {
	snap := snapshotFor(exampleProfile(nil), nil, nil)
	if snap.Cycle.Active() {
		t.Fatalf("cycle = %+v, want inactive", snap.Cycle)
	}
	want := CalculateTargetCalories(2759, GoalLoseWeight, DefaultGoalMultipliers)
	if snap.CalorieTarget != want {
		t.Errorf("target = %d, want %d", snap.CalorieTarget, want)
	}
	if snap.WeightReminder {
		t.Error("weight reminder should be off without an active cycle")
	}
}

// TestComputeSnapshot_IncompleteProfileDefaults covers the documented
// defaults for a missing or broken profile.
func TestComputeSnapshot_IncompleteProfileDefaults(t *testing.T) {
	start := dashNow.AddDate(0, 0, -3)
	broken := exampleProfile(&start)
	broken.ActivityLevel = nil
	badAge := exampleProfile(&start)
	negative := -5
	badAge.Age = &negative

	cases := []struct {
		name    string
		profile *UserProfile
		target  int
	}{
		{"nil profile", nil, DefaultTDEE},
		{"diet phase without activity level", broken, DefaultDietCalories},
		{"diet phase with non-positive age", badAge, DefaultDietCalories},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshotFor(tc.profile, nil, nil)
			if !snap.DefaultTDEEUsed || snap.TDEE != DefaultTDEE {
				t.Errorf("tdee = %d (default=%v), want default %d", snap.TDEE, snap.DefaultTDEEUsed, DefaultTDEE)
			}
			if snap.CalorieTarget != tc.target {
				t.Errorf("target = %d, want %d", snap.CalorieTarget, tc.target)
			}
		})
	}
}

// TestComputeSnapshot_WeightReminderClearedByTodaysEntry.
func TestComputeSnapshot_WeightReminderClearedByTodaysEntry(t *testing.T) {
	start := dashNow.AddDate(0, 0, -5)
	weights := []WeightLogEntry{weighIn(79.8, dashNow.Add(-9*time.Hour))}
	snap := snapshotFor(exampleProfile(&start), weights, nil)
	if snap.WeightReminder {
		t.Error("weight reminder should be off once today's weight is logged")
	}
	if snap.Weight.LatestKg == nil || *snap.Weight.LatestKg != 79.8 {
		t.Errorf("latest weight = %v, want 79.8", snap.Weight.LatestKg)
	}
}

// TestComputeSnapshot_ConsumedAndStreak sums only today's meals and counts
// the streak from both logs.
func TestComputeSnapshot_ConsumedAndStreak(t *testing.T) {
	start := dashNow.AddDate(0, 0, -14)
	meals := []MealLogEntry{
		{CaloriesKcal: 600, ProteinG: 40, CarbsG: 50, FatG: 20, LoggedAt: dashNow.Add(-6 * time.Hour)},
		{CaloriesKcal: 700, ProteinG: 45, CarbsG: 70, FatG: 25, LoggedAt: dashNow.Add(-1 * time.Hour)},
		{CaloriesKcal: 2000, LoggedAt: dashNow.AddDate(0, 0, -2)},
	}
	weights := []WeightLogEntry{weighIn(80, dashNow.AddDate(0, 0, -1))}

	snap := snapshotFor(exampleProfile(&start), weights, meals)
	if snap.Consumed.Calories != 1300 || snap.Consumed.Entries != 2 {
		t.Errorf("consumed = %+v, want 1300 kcal over 2 entries", snap.Consumed)
	}
	if snap.CaloriesLeft != 2759-1300 {
		t.Errorf("calories left = %d, want %d", snap.CaloriesLeft, 2759-1300)
	}
	if snap.MacrosLeft.ProteinG != 160-85 {
		t.Errorf("protein left = %v, want 75", snap.MacrosLeft.ProteinG)
	}
	if snap.Streak != 3 {
		t.Errorf("streak = %d, want 3", snap.Streak)
	}
}

// TestComputeSnapshot_MacroWeightFallsBackToLog uses the logged weight when
// the profile has none.
func TestComputeSnapshot_MacroWeightFallsBackToLog(t *testing.T) {
	p := exampleProfile(nil)
	p.WeightKg = nil
	weights := []WeightLogEntry{weighIn(90, dashNow.Add(-time.Hour))}
	snap := snapshotFor(p, weights, nil)
	if snap.MacroTargets.ProteinG != 180 || snap.MacroTargets.FatG != 90 {
		t.Errorf("macros = %+v, want protein 180 fat 90", snap.MacroTargets)
	}
}

/* ─── Aggregator ─────────────────────────────────────────────────────── */

func TestAggregator_Snapshot(t *testing.T) {
	start := dashNow.AddDate(0, 0, -14)
	agg := NewAggregator(
		fakeProfiles{profile: exampleProfile(&start)},
		fakeWeights{entries: lastWeek(dashNow, 79.5)},
		fakeMeals{entries: mealsForDays(0)},
		nil,
	)
	snap, err := agg.Snapshot(context.Background(), 1, InZone(FixedClock(dashNow), time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Date != "2026-10-19" {
		t.Errorf("date = %s, want 2026-10-19", snap.Date)
	}
	if snap.Cycle.DayInCycle != 15 || snap.CalorieTarget != 2759 {
		t.Errorf("cycle/target = %d/%d, want 15/2759", snap.Cycle.DayInCycle, snap.CalorieTarget)
	}
	if snap.Weight.Trend != TrendDown {
		t.Errorf("trend = %s, want down", snap.Weight.Trend)
	}
	if snap.Streak != 7 {
		t.Errorf("streak = %d, want 7", snap.Streak)
	}
}

// dayOnlyMeals fails FetchAll so tests can pin a caller to FetchForDay.
type dayOnlyMeals struct{ fakeMeals }

func (dayOnlyMeals) FetchAll(ctx context.Context, userID int) ([]MealLogEntry, error) {
	return nil, errors.New("FetchAll not expected")
}

// TestAggregator_DayInputs anchors a past day: only that day's meals are
// loaded and the cycle is evaluated on that date.
func TestAggregator_DayInputs(t *testing.T) {
	start := dashNow.AddDate(0, 0, -14) // today is day 15
	yesterday := dashNow.AddDate(0, 0, -1)
	meals := dayOnlyMeals{fakeMeals{entries: []MealLogEntry{
		{CaloriesKcal: 700, ProteinG: 40, LoggedAt: yesterday.Add(-2 * time.Hour)},
		{CaloriesKcal: 300, ProteinG: 10, LoggedAt: yesterday},
		{CaloriesKcal: 900, ProteinG: 60, LoggedAt: dashNow},
	}}}
	agg := NewAggregator(fakeProfiles{profile: exampleProfile(&start)}, fakeWeights{}, meals, nil)

	in, err := agg.DayInputs(context.Background(), 1, yesterday, InZone(FixedClock(dashNow), time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(in.Meals) != 2 || !in.Now.Equal(yesterday) {
		t.Fatalf("inputs = %d meals at %v, want 2 at %v", len(in.Meals), in.Now, yesterday)
	}

	snap := ComputeSnapshot(in)
	if snap.Cycle.DayInCycle != 14 || snap.CalorieTarget != 1848 {
		t.Errorf("cycle/target = %d/%d, want 14/1848", snap.Cycle.DayInCycle, snap.CalorieTarget)
	}
	if snap.Consumed.Calories != 1000 || snap.Consumed.ProteinG != 50 {
		t.Errorf("consumed = %+v, want 1000 kcal / 50g protein", snap.Consumed)
	}
}

// TestAggregator_RepositoryErrors surfaces each repository failure.
func TestAggregator_RepositoryErrors(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		agg  *Aggregator
	}{
		{"profile", NewAggregator(fakeProfiles{err: boom}, fakeWeights{}, fakeMeals{}, nil)},
		{"weights", NewAggregator(fakeProfiles{}, fakeWeights{err: boom}, fakeMeals{}, nil)},
		{"meals", NewAggregator(fakeProfiles{}, fakeWeights{}, fakeMeals{err: boom}, nil)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.agg.Snapshot(context.Background(), 1, InZone(FixedClock(dashNow), nil))
			if !errors.Is(err, boom) {
				t.Errorf("err = %v, want wrapped boom", err)
			}
		})
	}
}

// TestAggregator_MissingProfileRenders: no profile is not an error.
func TestAggregator_MissingProfileRenders(t *testing.T) {
	agg := NewAggregator(fakeProfiles{}, fakeWeights{}, fakeMeals{}, GoalMultipliers{GoalMaintainWeight: 1})
	snap, err := agg.Snapshot(context.Background(), 7, InZone(FixedClock(dashNow), time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.CalorieTarget != DefaultTDEE || snap.Streak != 0 || snap.Cycle.Active() {
		t.Errorf("snapshot = %+v, want default target, no streak, no cycle", snap)
	}
}
