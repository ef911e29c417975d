package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

// validItemTypes is the set of allowed values for the meal_type enum.
// Reject unknown values with 400 rather than letting the DB return a cryptic 500.
var validItemTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// mealLoggedAt resolves the optional YYYY-MM-DD a meal belongs to. Today (or
// no date) logs at now; any other day logs at that day's local midnight.
func mealLoggedAt(date string, ts matador.TimeSource) (time.Time, error) {
	now := ts.Now()
	cal := ts.Calendar()
	if date == "" {
		return now, nil
	}
	day, err := parseLocalDate(date, cal.Location)
	if err != nil {
		return time.Time{}, err
	}
	if cal.SameDay(day, now) {
		return now, nil
	}
	return day, nil
}

// getDailySummary returns meal items, engine totals and the day's targets.
// GET /api/meal-log/daily?date=YYYY-MM-DD (defaults to today in the user's timezone).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	ts := h.timeSource(c)
	cal := ts.Calendar()

	day := ts.Now()
	if s := c.Query("date"); s != "" {
		d, err := parseLocalDate(s, cal.Location)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		if !cal.SameDay(d, day) {
			day = d
		}
	}

	items, err := h.meals.itemsForDay(c, userID, day)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch items")
		return
	}
	if items == nil {
		items = []mealLogItem{}
	}

	in, err := h.dashboard.DayInputs(c, userID, day, ts)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to compute targets")
		return
	}
	snap := matador.ComputeSnapshot(in)
	totals := snap.Consumed

	c.JSON(http.StatusOK, dailySummary{
		Date:          cal.DayKey(day),
		CalorieTarget: snap.CalorieTarget,
		MacroTargets:  snap.MacroTargets,
		Cycle:         snap.Cycle,
		Totals:        totals,
		CaloriesLeft:  snap.CalorieTarget - totals.Calories,
		Items:         items,
	})
}

// getWeekSummary returns per-day totals for the 7 days starting at the
// calendar week start containing week_start. Each day carries that day's
// cycle-aware target. Days with no logged items have has_data=false.
// GET /api/meal-log/week-summary?week_start=YYYY-MM-DD (defaults to the current week).
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	ts := h.timeSource(c)
	cal := ts.Calendar()

	anchor := ts.Now()
	if s := c.Query("week_start"); s != "" {
		t, err := parseLocalDate(s, cal.Location)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		anchor = t
	}
	weekStart := cal.StartOfWeek(anchor)
	weekEnd := cal.AddDays(weekStart, 7)

	// Group by the user's local date so late-evening meals land on the right day.
	rows, err := queryMany[weekDayDBRow](h.db, c,
		`SELECT
			(logged_at AT TIME ZONE @tz)::date AS date,
			COALESCE(SUM(calories),  0)::int AS calories,
			COALESCE(SUM(protein_g), 0) AS protein_g,
			COALESCE(SUM(carbs_g),   0) AS carbs_g,
			COALESCE(SUM(fat_g),     0) AS fat_g
		 FROM meal_log_items
		 WHERE user_id = @userID AND logged_at >= @weekStart AND logged_at < @weekEnd
		 GROUP BY 1`,
		pgx.NamedArgs{
			"userID":    userID,
			"tz":        cal.Location.String(),
			"weekStart": weekStart,
			"weekEnd":   weekEnd,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	in, err := h.dashboard.Inputs(c, userID, ts)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to compute targets")
		return
	}

	c.JSON(http.StatusOK, buildWeekSummary(rows, in, weekStart))
}

// buildWeekSummary merges the GROUP BY rows into a full 7-day response,
// filling zeros for days with no data.
func buildWeekSummary(rows []weekDayDBRow, in matador.Inputs, weekStart time.Time) []weekDaySummary {
	cal := in.Calendar
	rowByDate := make(map[string]weekDayDBRow, len(rows))
	for _, r := range rows {
		rowByDate[r.Date.Time.Format("2006-01-02")] = r
	}

	result := make([]weekDaySummary, 7)
	for i := 0; i < 7; i++ {
		d := cal.AddDays(weekStart, i)
		in.Now = d
		target := matador.ComputeSnapshot(in).CalorieTarget

		day := weekDaySummary{Date: DateOnly{d}, CalorieTarget: target}
		if row, ok := rowByDate[cal.DayKey(d)]; ok {
			day.HasData = true
			day.Calories = row.Calories
			day.ProteinG = row.ProteinG
			day.CarbsG = row.CarbsG
			day.FatG = row.FatG
		}
		day.CaloriesLeft = target - day.Calories
		result[i] = day
	}
	return result
}

// createMealLogItem inserts a new meal log entry.
// POST /api/meal-log/items. Defaults date to today if omitted.
func (h *Handler) createMealLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createMealLogItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ItemName == "" {
		apiError(c, http.StatusBadRequest, "item_name is required")
		return
	}
	if !validItemTypes[body.Type] {
		apiError(c, http.StatusBadRequest, "type must be one of: breakfast, lunch, dinner, snack")
		return
	}
	if body.Calories < 0 {
		apiError(c, http.StatusBadRequest, "calories must not be negative")
		return
	}
	loggedAt, err := mealLoggedAt(body.Date, h.timeSource(c))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	item, err := queryOne[mealLogItem](h.db, c,
		`INSERT INTO meal_log_items (user_id, logged_at, item_name, type, qty, uom, calories, protein_g, carbs_g, fat_g)
		 VALUES (@userID, @loggedAt, @itemName, @type, @qty, @uom, @calories, @proteinG, @carbsG, @fatG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "loggedAt": loggedAt, "itemName": body.ItemName,
			"type": body.Type, "qty": body.Qty, "uom": body.Uom,
			"calories": body.Calories, "proteinG": body.ProteinG,
			"carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// updateMealLogItem updates an existing meal log entry.
// PUT /api/meal-log/items/:id. Uses COALESCE so omitted fields keep their current value.
func (h *Handler) updateMealLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Date     *string  `json:"date"`
		ItemName *string  `json:"item_name"`
		Type     *string  `json:"type"`
		Qty      *float64 `json:"qty"`
		Uom      *string  `json:"uom"`
		Calories *int     `json:"calories"`
		ProteinG *float64 `json:"protein_g"`
		CarbsG   *float64 `json:"carbs_g"`
		FatG     *float64 `json:"fat_g"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Type != nil && !validItemTypes[*body.Type] {
		apiError(c, http.StatusBadRequest, "type must be one of: breakfast, lunch, dinner, snack")
		return
	}
	var loggedAt *time.Time
	if body.Date != nil {
		t, err := mealLoggedAt(*body.Date, h.timeSource(c))
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		loggedAt = &t
	}

	item, err := queryOne[mealLogItem](h.db, c,
		`UPDATE meal_log_items SET
			logged_at = COALESCE(@loggedAt, logged_at),
			item_name = COALESCE(@itemName, item_name),
			type = COALESCE(@type, type),
			qty = COALESCE(@qty, qty),
			uom = COALESCE(@uom, uom),
			calories = COALESCE(@calories, calories),
			protein_g = COALESCE(@proteinG, protein_g),
			carbs_g = COALESCE(@carbsG, carbs_g),
			fat_g = COALESCE(@fatG, fat_g),
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"loggedAt": loggedAt, "itemName": body.ItemName, "type": body.Type,
			"qty": body.Qty, "uom": body.Uom, "calories": body.Calories,
			"proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "item not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update item")
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

// deleteMealLogItem removes a meal log entry. Returns 204 on success.
// DELETE /api/meal-log/items/:id.
func (h *Handler) deleteMealLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM meal_log_items WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}

	c.Status(http.StatusNoContent)
}
