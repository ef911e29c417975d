package matador

const (
	proteinGPerKg = 2.0
	fatGPerKg     = 1.0

	kcalPerGProtein = 4
	kcalPerGCarbs   = 4
	kcalPerGFat     = 9
)

// Macros holds gram amounts for the three macronutrients.
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// AllocateMacros derives gram targets from bodyweight and a calorie target.
// Protein and fat are fixed per kg; carbs fill whatever calories remain and
// clamp to zero when protein and fat already exceed the target.
func AllocateMacros(weightKg float64, targetCalories int) Macros {
	if weightKg < 0 {
		weightKg = 0
	}
	protein := proteinGPerKg * weightKg
	fat := fatGPerKg * weightKg
	carbs := (float64(targetCalories) - protein*kcalPerGProtein - fat*kcalPerGFat) / kcalPerGCarbs
	if carbs < 0 {
		carbs = 0
	}
	return Macros{ProteinG: protein, CarbsG: carbs, FatG: fat}
}
