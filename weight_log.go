package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

var errFutureDate = errors.New("date is in the future")

// weightLoggedAt resolves the optional YYYY-MM-DD a weight applies to.
// Today (or no date) logs at now; an earlier day logs at that day's local
// midnight, which makes the entry backdated. Future days are rejected.
func weightLoggedAt(date string, ts matador.TimeSource) (time.Time, error) {
	now := ts.Now()
	cal := ts.Calendar()
	if date == "" {
		return now, nil
	}
	day, err := parseLocalDate(date, cal.Location)
	if err != nil {
		return time.Time{}, err
	}
	switch d := cal.DaysBetween(now, day); {
	case d == 0:
		return now, nil
	case d > 0:
		return time.Time{}, errFutureDate
	}
	return day, nil
}

func validWeightKG(kg float64) bool { return kg > 0 && kg <= 700 }

// markBackdated sets IsBackdated on each entry using the user's calendar.
func markBackdated(entries []weightEntry, cal matador.Calendar) {
	for i := range entries {
		entries[i].IsBackdated = entries[i].toEngine().IsBackdated(cal)
	}
}

// getWeightLog returns weight entries whose local day falls within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	cal := h.timeSource(c).Calendar()
	startStr := c.Query("start")
	endStr := c.Query("end")

	if startStr == "" || endStr == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	start, err := parseLocalDate(startStr, cal.Location)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	end, err := parseLocalDate(endStr, cal.Location)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start.After(end) {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	entries, err := queryMany[weightEntry](h.db, c,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND logged_at >= @start AND logged_at < @end
		 ORDER BY logged_at ASC, created_at ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": cal.AddDays(end, 1)})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	if entries == nil {
		entries = []weightEntry{}
	}
	markBackdated(entries, cal)

	c.JSON(http.StatusOK, entries)
}

// createWeightEntry appends a weight entry. Several entries per day are
// allowed; the latest-created one is what the dashboard shows.
// POST /api/weight-log. Body: { "date"?: "YYYY-MM-DD", "weight_kg": 80.5 }.
func (h *Handler) createWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	ts := h.timeSource(c)

	var body struct {
		Date     string  `json:"date"`
		WeightKG float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validWeightKG(body.WeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}
	loggedAt, err := weightLoggedAt(body.Date, ts)
	if errors.Is(err, errFutureDate) {
		apiError(c, http.StatusBadRequest, "date must not be in the future")
		return
	} else if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`INSERT INTO weight_log (user_id, weight_kg, logged_at, created_at)
		 VALUES (@userID, @weightKG, @loggedAt, @createdAt)
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "weightKG": body.WeightKG, "loggedAt": loggedAt, "createdAt": ts.Now()})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create weight entry")
		return
	}
	entry.IsBackdated = entry.toEngine().IsBackdated(ts.Calendar())

	c.JSON(http.StatusCreated, entry)
}

// updateWeightEntry partially updates an existing weight entry.
// PUT /api/weight-log/:id. Body: { "date"?, "weight_kg"? }.
// Uses COALESCE so omitted fields keep their current values. created_at is
// never changed, so moving an entry to another day makes it backdated.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")
	ts := h.timeSource(c)

	var body struct {
		Date     *string  `json:"date"`
		WeightKG *float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	var loggedAt *time.Time
	if body.Date != nil {
		t, err := weightLoggedAt(*body.Date, ts)
		if errors.Is(err, errFutureDate) {
			apiError(c, http.StatusBadRequest, "date must not be in the future")
			return
		} else if err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		loggedAt = &t
	}
	if body.WeightKG != nil && !validWeightKG(*body.WeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`UPDATE weight_log SET
			logged_at = COALESCE(@loggedAt, logged_at),
			weight_kg = COALESCE(@weightKG, weight_kg)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "loggedAt": loggedAt, "weightKG": body.WeightKG})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "weight entry not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update weight entry")
		}
		return
	}
	entry.IsBackdated = entry.toEngine().IsBackdated(ts.Calendar())

	c.JSON(http.StatusOK, entry)
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
