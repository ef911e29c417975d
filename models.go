package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	Timezone  string     `json:"timezone" db:"timezone"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// userProfile maps to user_profiles. Every body field is nullable so a
// half-finished onboarding still loads.
type userProfile struct {
	UserID         int        `json:"user_id"          db:"user_id"`
	Gender         *string    `json:"gender"           db:"gender"`
	HeightCM       *float64   `json:"height_cm"        db:"height_cm"`
	WeightKG       *float64   `json:"weight_kg"        db:"weight_kg"`
	Age            *int       `json:"age"              db:"age"`
	ActivityLevel  *string    `json:"activity_level"   db:"activity_level"`
	Goal           *string    `json:"goal"             db:"goal"`
	CycleStartDate *time.Time `json:"cycle_start_date" db:"cycle_start_date"`
	UpdatedAt      *time.Time `json:"updated_at"       db:"updated_at"`

	// Computed fields, populated server-side; not stored in DB.
	ComputedBMR    *int                `json:"computed_bmr,omitempty"    db:"-"`
	ComputedTDEE   *int                `json:"computed_tdee,omitempty"   db:"-"`
	ComputedTarget *int                `json:"computed_target,omitempty" db:"-"`
	Cycle          *matador.CycleState `json:"cycle,omitempty"           db:"-"`
}

// toEngine converts the row into the engine's profile. Unknown enum values
// are dropped so the engine falls back to its defaults.
func (p *userProfile) toEngine() *matador.UserProfile {
	out := &matador.UserProfile{
		UserID:         p.UserID,
		HeightCm:       p.HeightCM,
		WeightKg:       p.WeightKG,
		Age:            p.Age,
		CycleStartDate: p.CycleStartDate,
	}
	if p.Gender != nil {
		if g, ok := matador.ParseGender(*p.Gender); ok {
			out.Gender = &g
		}
	}
	if p.ActivityLevel != nil {
		if lvl, ok := matador.ParseActivityLevel(*p.ActivityLevel); ok {
			out.ActivityLevel = &lvl
		}
	}
	if p.Goal != nil {
		if goal, ok := matador.ParseGoal(*p.Goal); ok {
			out.Goal = &goal
		}
	}
	return out
}

// weightEntry maps to weight_log. LoggedAt is the day the weight applies
// to, CreatedAt when it was recorded.
type weightEntry struct {
	ID          int       `json:"id"           db:"id"`
	UserID      int       `json:"user_id"      db:"user_id"`
	WeightKG    float64   `json:"weight_kg"    db:"weight_kg"`
	LoggedAt    time.Time `json:"logged_at"    db:"logged_at"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
	IsBackdated bool      `json:"is_backdated" db:"-"`
}

func (w weightEntry) toEngine() matador.WeightLogEntry {
	return matador.WeightLogEntry{
		UserID:    w.UserID,
		WeightKg:  w.WeightKG,
		LoggedAt:  w.LoggedAt,
		CreatedAt: w.CreatedAt,
	}
}

// mealLogItem maps to meal_log_items. Nullable numeric fields use pointers
// so pgx can scan NULLs and JSON omits them naturally.
type mealLogItem struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	LoggedAt  time.Time  `json:"logged_at" db:"logged_at"`
	ItemName  string     `json:"item_name" db:"item_name"`
	Type      string     `json:"type" db:"type"`
	Qty       *float64   `json:"qty" db:"qty"`
	Uom       *string    `json:"uom" db:"uom"`
	Calories  int        `json:"calories" db:"calories"`
	ProteinG  *float64   `json:"protein_g" db:"protein_g"`
	CarbsG    *float64   `json:"carbs_g" db:"carbs_g"`
	FatG      *float64   `json:"fat_g" db:"fat_g"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

func (m mealLogItem) toEngine() matador.MealLogEntry {
	return matador.MealLogEntry{
		UserID:       m.UserID,
		CaloriesKcal: m.Calories,
		ProteinG:     deref(m.ProteinG),
		CarbsG:       deref(m.CarbsG),
		FatG:         deref(m.FatG),
		LoggedAt:     m.LoggedAt,
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

/* ─── Response shapes ────────────────────────────────────────────────── */

// weekDayDBRow is the shape of each row returned by the week-summary GROUP BY query.
type weekDayDBRow struct {
	Date     DateOnly `db:"date"`
	Calories int      `db:"calories"`
	ProteinG float64  `db:"protein_g"`
	CarbsG   float64  `db:"carbs_g"`
	FatG     float64  `db:"fat_g"`
}

// weekDaySummary is one day's entry in the week-summary response. Days with
// no logged items have HasData=false and zero totals.
type weekDaySummary struct {
	Date          DateOnly `json:"date"`
	CalorieTarget int      `json:"calorie_target"`
	Calories      int      `json:"calories"`
	CaloriesLeft  int      `json:"calories_left"`
	ProteinG      float64  `json:"protein_g"`
	CarbsG        float64  `json:"carbs_g"`
	FatG          float64  `json:"fat_g"`
	HasData       bool     `json:"has_data"`
}

// dailySummary is the response shape for GET /meal-log/daily.
type dailySummary struct {
	Date          string             `json:"date"`
	CalorieTarget int                `json:"calorie_target"`
	MacroTargets  matador.Macros     `json:"macro_targets"`
	Cycle         matador.CycleState `json:"cycle"`
	Totals        matador.Totals     `json:"totals"`
	CaloriesLeft  int                `json:"calories_left"`
	Items         []mealLogItem      `json:"items"`
}

/* ─── Requests ───────────────────────────────────────────────────────── */

// createMealLogItemRequest is the request body for POST /api/meal-log/items.
// Date is YYYY-MM-DD in the user's timezone; omitted means now.
type createMealLogItemRequest struct {
	Date     string   `json:"date"`
	ItemName string   `json:"item_name"`
	Type     string   `json:"type"`
	Qty      *float64 `json:"qty"`
	Uom      *string  `json:"uom"`
	Calories int      `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

// patchProfileRequest is the request body for PATCH /api/profile. Only
// non-nil fields get written.
type patchProfileRequest struct {
	Gender        *string  `json:"gender"`
	HeightCM      *float64 `json:"height_cm"`
	WeightKG      *float64 `json:"weight_kg"`
	Age           *int     `json:"age"`
	ActivityLevel *string  `json:"activity_level"`
	Goal          *string  `json:"goal"`
	Timezone      *string  `json:"timezone"`
}
