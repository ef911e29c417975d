package main

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

// cycleResponse is the response shape for the /api/cycle routes.
type cycleResponse struct {
	CycleStartDate *time.Time         `json:"cycle_start_date"`
	Cycle          matador.CycleState `json:"cycle"`
}

func cycleFor(start *time.Time, ts matador.TimeSource) cycleResponse {
	return cycleResponse{
		CycleStartDate: start,
		Cycle:          matador.ComputeCycleState(start, ts.Now(), ts.Calendar()),
	}
}

// getCycle returns the current MATADOR cycle state. Users without a profile
// or without a start date get phase "none".
// GET /api/cycle.
func (h *Handler) getCycle(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.profiles.FetchProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	var start *time.Time
	if p != nil {
		start = p.CycleStartDate
	}

	c.JSON(http.StatusOK, cycleFor(start, h.timeSource(c)))
}

// startCycle sets the cycle start to local midnight of body.date (default
// today). Restarting an active cycle moves it to day 1.
// POST /api/cycle/start. Body: { "date"?: "YYYY-MM-DD" }.
func (h *Handler) startCycle(c *gin.Context) {
	userID := c.GetInt("user_id")
	ts := h.timeSource(c)

	var body struct {
		Date string `json:"date"`
	}
	if err := bindOptionalJSON(c, &body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	start, err := cycleStartFor(body.Date, ts)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	p, err := queryOne[userProfile](h.db, c,
		`INSERT INTO user_profiles (user_id, cycle_start_date) VALUES (@userID, @start)
		 ON CONFLICT (user_id) DO UPDATE SET cycle_start_date = EXCLUDED.cycle_start_date, updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "start": start})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to start cycle")
		return
	}

	c.JSON(http.StatusOK, cycleFor(p.CycleStartDate, ts))
}

// bindOptionalJSON binds a JSON body when one is sent. A missing or empty
// body leaves obj untouched. ContentLength is not consulted since chunked
// requests report -1.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// cycleStartFor resolves an optional YYYY-MM-DD into local midnight.
func cycleStartFor(date string, ts matador.TimeSource) (time.Time, error) {
	cal := ts.Calendar()
	if date == "" {
		return cal.StartOfDay(ts.Now()), nil
	}
	return parseLocalDate(date, cal.Location)
}

// stopCycle clears the cycle start date. Targets fall back to the goal table.
// DELETE /api/cycle.
func (h *Handler) stopCycle(c *gin.Context) {
	userID := c.GetInt("user_id")

	if _, err := h.db.Exec(c,
		"UPDATE user_profiles SET cycle_start_date = NULL, updated_at = now() WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID}); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to stop cycle")
		return
	}

	c.JSON(http.StatusOK, cycleFor(nil, h.timeSource(c)))
}
