package matador

import (
	"math"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ActivityLevel string

const (
	Sedentary        ActivityLevel = "sedentary"
	LightlyActive    ActivityLevel = "lightly_active"
	ModeratelyActive ActivityLevel = "moderately_active"
	VeryActive       ActivityLevel = "very_active"
	ExtraActive      ActivityLevel = "extra_active"
)

type Goal string

const (
	GoalLoseWeight     Goal = "lose_weight"
	GoalMaintainWeight Goal = "maintain_weight"
	GoalGainMuscle     Goal = "gain_muscle"
)

const (
	// DietPhaseFactor is the fraction of TDEE eaten during a diet phase.
	DietPhaseFactor = 0.67
	// MinDietCalories is the hard floor for any diet-phase target.
	MinDietCalories = 1200
)

// activityFactors maps activity levels to their TDEE multiplier. It is the
// single source of truth for valid levels; the HTTP layer validates
// against it through ParseActivityLevel.
var activityFactors = map[ActivityLevel]float64{
	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	VeryActive:       1.725,
	ExtraActive:      1.9,
}

// activityAliases accepts older spellings stored by earlier app versions.
var activityAliases = map[string]ActivityLevel{
	"extremely_active": ExtraActive,
}

// ParseActivityLevel normalises s and reports whether it names a known level.
func ParseActivityLevel(s string) (ActivityLevel, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if alias, ok := activityAliases[s]; ok {
		return alias, true
	}
	level := ActivityLevel(s)
	_, ok := activityFactors[level]
	return level, ok
}

// ActivityFactor returns the TDEE multiplier for level.
func ActivityFactor(level ActivityLevel) (float64, bool) {
	level, ok := ParseActivityLevel(string(level))
	if !ok {
		return 0, false
	}
	return activityFactors[level], true
}

// ParseGender normalises s and reports whether it is male or female.
func ParseGender(s string) (Gender, bool) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	return g, g == GenderMale || g == GenderFemale
}

// ParseGoal normalises s and reports whether it names a known goal.
func ParseGoal(s string) (Goal, bool) {
	g := Goal(strings.ToLower(strings.TrimSpace(s)))
	_, ok := DefaultGoalMultipliers[g]
	return g, ok
}

// CalculateBMR computes basal metabolic rate with Mifflin-St Jeor.
// Returns ok=false for an unknown gender or non-positive weight, height
// or age.
func CalculateBMR(gender Gender, weightKg, heightCm float64, age int) (float64, bool) {
	gender, ok := ParseGender(string(gender))
	if !ok || weightKg <= 0 || heightCm <= 0 || age <= 0 {
		return 0, false
	}
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr, true
}

// CalculateTDEE multiplies BMR by the activity factor and rounds to the
// nearest kcal.
func CalculateTDEE(gender Gender, heightCm, weightKg float64, age int, level ActivityLevel) (int, bool) {
	factor, ok := ActivityFactor(level)
	if !ok {
		return 0, false
	}
	bmr, ok := CalculateBMR(gender, weightKg, heightCm, age)
	if !ok {
		return 0, false
	}
	return int(math.Round(bmr * factor)), true
}

/* ─── Goal-based targets ─────────────────────────────────────────────── */

// GoalMultipliers is the product-configured {goal: multiplier} table used
// for targets outside an active cycle.
type GoalMultipliers map[Goal]float64

// DefaultGoalMultipliers is used when no table is configured.
var DefaultGoalMultipliers = GoalMultipliers{
	GoalLoseWeight:     0.80,
	GoalMaintainWeight: 1.00,
	GoalGainMuscle:     1.10,
}

// Multiplier returns the configured multiplier for goal. Unknown or
// unconfigured goals fall back to the default table, then to 1.0.
func (g GoalMultipliers) Multiplier(goal Goal) float64 {
	if m, ok := g[goal]; ok && m > 0 {
		return m
	}
	if m, ok := DefaultGoalMultipliers[goal]; ok {
		return m
	}
	return 1.0
}

// CalculateTargetCalories applies the goal multiplier to tdee.
func CalculateTargetCalories(tdee int, goal Goal, table GoalMultipliers) int {
	return int(math.Round(float64(tdee) * table.Multiplier(goal)))
}

// CalculateMatadorCalories returns the phase-adjusted target. Diet phase
// eats 67% of TDEE but never below 1200; maintenance eats TDEE.
//
// The diet value is truncated toward zero, not rounded: a TDEE of 2759
// gives 1848 even though 2759*0.67 = 1848.53.
func CalculateMatadorCalories(tdee int, isDietPhase bool) int {
	if !isDietPhase {
		return tdee
	}
	target := int(float64(tdee) * DietPhaseFactor)
	if target < MinDietCalories {
		return MinDietCalories
	}
	return target
}
