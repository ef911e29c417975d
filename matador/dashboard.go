package matador

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultTDEE stands in when the profile cannot produce a TDEE.
	DefaultTDEE = 2000
	// DefaultDietCalories is the diet-phase target used with DefaultTDEE.
	DefaultDietCalories = 1800
	// DefaultAge is assumed when the profile has no age.
	DefaultAge = 30
)

// UserProfile is the read-only profile the engine works from. Nil pointer
// fields are unknown; the engine degrades to defaults rather than failing.
type UserProfile struct {
	UserID         int
	Gender         *Gender
	HeightCm       *float64
	WeightKg       *float64
	Age            *int
	ActivityLevel  *ActivityLevel
	Goal           *Goal
	CycleStartDate *time.Time
}

// age applies DefaultAge only when no age was recorded. A non-positive
// recorded age is passed through so BMR/TDEE report no result.
func (p *UserProfile) age() int {
	if p.Age == nil {
		return DefaultAge
	}
	return *p.Age
}

// BMR returns the profile's basal metabolic rate when complete.
func (p *UserProfile) BMR() (float64, bool) {
	if p == nil || p.Gender == nil || p.WeightKg == nil || p.HeightCm == nil {
		return 0, false
	}
	return CalculateBMR(*p.Gender, *p.WeightKg, *p.HeightCm, p.age())
}

// TDEE returns the profile's TDEE when complete.
func (p *UserProfile) TDEE() (int, bool) {
	if p == nil || p.Gender == nil || p.WeightKg == nil || p.HeightCm == nil || p.ActivityLevel == nil {
		return 0, false
	}
	return CalculateTDEE(*p.Gender, *p.HeightCm, *p.WeightKg, p.age(), *p.ActivityLevel)
}

func (p *UserProfile) goal() Goal {
	if p == nil || p.Goal == nil {
		return GoalMaintainWeight
	}
	return *p.Goal
}

/* ─── Repository ports ───────────────────────────────────────────────── */

// ProfileRepository returns nil, nil when the user has no profile.
type ProfileRepository interface {
	FetchProfile(ctx context.Context, userID int) (*UserProfile, error)
}

// WeightLogRepository may return entries in any order.
type WeightLogRepository interface {
	FetchAll(ctx context.Context, userID int) ([]WeightLogEntry, error)
}

// MealLogRepository's FetchForDay uses day's location to decide the
// calendar-day boundaries.
type MealLogRepository interface {
	FetchForDay(ctx context.Context, userID int, day time.Time) ([]MealLogEntry, error)
	FetchAll(ctx context.Context, userID int) ([]MealLogEntry, error)
}

/* ─── Snapshot ───────────────────────────────────────────────────────── */

// Inputs is everything ComputeSnapshot needs, already fetched.
type Inputs struct {
	Profile         *UserProfile
	Weights         []WeightLogEntry
	Meals           []MealLogEntry
	Now             time.Time
	Calendar        Calendar
	GoalMultipliers GoalMultipliers
}

// Snapshot is the daily dashboard aggregate. It is never persisted.
type Snapshot struct {
	Date            string      `json:"date"`
	Cycle           CycleState  `json:"cycle"`
	BMR             *int        `json:"bmr"`
	TDEE            int         `json:"tdee"`
	DefaultTDEEUsed bool        `json:"default_tdee_used"`
	CalorieTarget   int         `json:"calorie_target"`
	MacroTargets    Macros      `json:"macro_targets"`
	Weight          WeightStats `json:"weight"`
	WeightReminder  bool        `json:"weight_reminder"`
	Streak          int         `json:"streak"`
	Consumed        Totals      `json:"consumed"`
	CaloriesLeft    int         `json:"calories_left"`
	MacrosLeft      Macros      `json:"macros_left"`
}

// ComputeSnapshot derives the dashboard from already-fetched inputs. It
// never fails: missing or invalid data degrades to documented defaults.
func ComputeSnapshot(in Inputs) Snapshot {
	cal := in.Calendar
	now := in.Now
	profile := in.Profile

	snap := Snapshot{Date: cal.DayKey(now)}

	tdee, ok := profile.TDEE()
	if !ok {
		tdee = DefaultTDEE
		snap.DefaultTDEEUsed = true
	}
	snap.TDEE = tdee
	if bmr, ok := profile.BMR(); ok {
		rounded := int(math.Round(bmr))
		snap.BMR = &rounded
	}

	var start *time.Time
	if profile != nil {
		start = profile.CycleStartDate
	}
	snap.Cycle = ComputeCycleState(start, now, cal)

	switch {
	case snap.Cycle.Active() && snap.DefaultTDEEUsed && snap.Cycle.IsDietPhase():
		snap.CalorieTarget = DefaultDietCalories
	case snap.Cycle.Active():
		snap.CalorieTarget = CalculateMatadorCalories(tdee, snap.Cycle.IsDietPhase())
	default:
		snap.CalorieTarget = CalculateTargetCalories(tdee, profile.goal(), in.GoalMultipliers)
	}

	snap.MacroTargets = AllocateMacros(macroWeight(profile, in.Weights), snap.CalorieTarget)
	snap.Weight = AnalyzeWeights(in.Weights, now)
	snap.WeightReminder = weightReminderDue(snap.Cycle, in.Weights, now, cal)
	snap.Streak = ComputeStreak(in.Weights, in.Meals, now, cal)

	snap.Consumed = DailyTotals(in.Meals, now, cal)
	snap.CaloriesLeft = snap.CalorieTarget - snap.Consumed.Calories
	snap.MacrosLeft = Macros{
		ProteinG: snap.MacroTargets.ProteinG - snap.Consumed.ProteinG,
		CarbsG:   snap.MacroTargets.CarbsG - snap.Consumed.CarbsG,
		FatG:     snap.MacroTargets.FatG - snap.Consumed.FatG,
	}
	return snap
}

// macroWeight prefers the profile weight and falls back to the latest
// logged weight; with neither, protein and fat targets are zero.
func macroWeight(p *UserProfile, weights []WeightLogEntry) float64 {
	if p != nil && p.WeightKg != nil && *p.WeightKg > 0 {
		return *p.WeightKg
	}
	if w, ok := LatestWeight(weights); ok {
		return w
	}
	return 0
}

// weightReminderDue is false without an active cycle, on cycle day 1
// (onboarding captured the weight) or once any weight is logged for today.
func weightReminderDue(state CycleState, weights []WeightLogEntry, now time.Time, cal Calendar) bool {
	if !state.Active() || state.DayInCycle == 1 {
		return false
	}
	_, loggedToday := WeightForDay(weights, now, cal)
	return !loggedToday
}

/* ─── Aggregator ─────────────────────────────────────────────────────── */

// Aggregator fetches a consistent set of inputs once and computes the
// snapshot from them. It holds no mutable state and is safe for
// concurrent use.
type Aggregator struct {
	profiles ProfileRepository
	weights  WeightLogRepository
	meals    MealLogRepository
	goals    GoalMultipliers
}

// NewAggregator wires the repositories. A nil goal table uses
// DefaultGoalMultipliers.
func NewAggregator(profiles ProfileRepository, weights WeightLogRepository, meals MealLogRepository, goals GoalMultipliers) *Aggregator {
	if goals == nil {
		goals = DefaultGoalMultipliers
	}
	return &Aggregator{profiles: profiles, weights: weights, meals: meals, goals: goals}
}

// Goals returns the configured goal multiplier table.
func (a *Aggregator) Goals() GoalMultipliers { return a.goals }

// Inputs fetches everything a snapshot for userID needs at ts.Now().
// Repository failures are wrapped and returned for the caller to report.
func (a *Aggregator) Inputs(ctx context.Context, userID int, ts TimeSource) (Inputs, error) {
	profile, err := a.profiles.FetchProfile(ctx, userID)
	if err != nil {
		return Inputs{}, fmt.Errorf("fetch profile: %w", err)
	}
	weights, err := a.weights.FetchAll(ctx, userID)
	if err != nil {
		return Inputs{}, fmt.Errorf("fetch weight log: %w", err)
	}
	meals, err := a.meals.FetchAll(ctx, userID)
	if err != nil {
		return Inputs{}, fmt.Errorf("fetch meal log: %w", err)
	}
	return Inputs{
		Profile:         profile,
		Weights:         weights,
		Meals:           meals,
		Now:             ts.Now(),
		Calendar:        ts.Calendar(),
		GoalMultipliers: a.goals,
	}, nil
}

// DayInputs is Inputs anchored at day instead of ts.Now(), with only that
// day's meals loaded. Targets, cycle and consumed totals are exact for day;
// the streak is not, since older meals are left out.
func (a *Aggregator) DayInputs(ctx context.Context, userID int, day time.Time, ts TimeSource) (Inputs, error) {
	cal := ts.Calendar()
	day = day.In(cal.location())
	profile, err := a.profiles.FetchProfile(ctx, userID)
	if err != nil {
		return Inputs{}, fmt.Errorf("fetch profile: %w", err)
	}
	weights, err := a.weights.FetchAll(ctx, userID)
	if err != nil {
		return Inputs{}, fmt.Errorf("fetch weight log: %w", err)
	}
	meals, err := a.meals.FetchForDay(ctx, userID, day)
	if err != nil {
		return Inputs{}, fmt.Errorf("fetch meal log for %s: %w", cal.DayKey(day), err)
	}
	return Inputs{
		Profile:         profile,
		Weights:         weights,
		Meals:           meals,
		Now:             day,
		Calendar:        cal,
		GoalMultipliers: a.goals,
	}, nil
}

// Snapshot fetches inputs for userID and computes the dashboard.
func (a *Aggregator) Snapshot(ctx context.Context, userID int, ts TimeSource) (Snapshot, error) {
	in, err := a.Inputs(ctx, userID, ts)
	if err != nil {
		return Snapshot{}, err
	}
	return ComputeSnapshot(in), nil
}
