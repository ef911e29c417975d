package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

// getProfile returns the authenticated user's profile. Computed fields
// (bmr, tdee, target, cycle) are populated when the profile allows it.
// GET /api/profile. A user without a profile row gets an empty profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		p = userProfile{UserID: userID}
	} else if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	h.populateComputed(&p, h.timeSource(c))
	c.JSON(http.StatusOK, p)
}

// patchProfile updates only the provided profile fields, creating the row
// on first use. PATCH /api/profile. A timezone change is written to users.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	setClauses, args, msg := buildProfileUpdate(body)
	if msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	if len(setClauses) == 0 && body.Timezone == nil {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	var loc *time.Location
	if body.Timezone != nil {
		var err error
		loc, err = time.LoadLocation(*body.Timezone)
		if err != nil || *body.Timezone == "" {
			apiError(c, http.StatusBadRequest, "timezone must be an IANA zone name, e.g. Europe/Berlin")
			return
		}
	}
	args["userID"] = userID

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	defer tx.Rollback(c)

	p, err := applyProfilePatch(c, tx, userID, body.Timezone, setClauses, args)
	if err != nil {
		log.Printf("[patchProfile] user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if err := tx.Commit(c); err != nil {
		log.Printf("[patchProfile] commit failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if loc != nil {
		// Computed fields below should already reflect the new zone.
		c.Set("timezone", loc)
	}

	h.populateComputed(&p, h.timeSource(c))
	c.JSON(http.StatusOK, p)
}

// applyProfilePatch writes the timezone and profile changes through tx.
// The caller commits; any error leaves tx to be rolled back.
func applyProfilePatch(ctx context.Context, tx dbtx, userID int, tz *string, setClauses []string, args pgx.NamedArgs) (userProfile, error) {
	if tz != nil {
		if _, err := tx.Exec(ctx, "UPDATE users SET timezone = @tz WHERE id = @userID",
			pgx.NamedArgs{"tz": *tz, "userID": userID}); err != nil {
			return userProfile{}, fmt.Errorf("update timezone: %w", err)
		}
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO user_profiles (user_id) VALUES (@userID) ON CONFLICT (user_id) DO NOTHING",
		pgx.NamedArgs{"userID": userID}); err != nil {
		return userProfile{}, fmt.Errorf("create profile: %w", err)
	}

	setClauses = append(setClauses, "updated_at = now()")
	p, err := queryOne[userProfile](tx, ctx,
		"UPDATE user_profiles SET "+strings.Join(setClauses, ", ")+" WHERE user_id = @userID RETURNING *",
		args)
	if err != nil {
		return userProfile{}, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// buildProfileUpdate validates a patch body and returns the SET clauses and
// args for the fields it carries. A non-empty message means a 400.
// Enum values are stored in canonical form.
func buildProfileUpdate(body patchProfileRequest) ([]string, pgx.NamedArgs, string) {
	setClauses := []string{}
	args := pgx.NamedArgs{}

	if body.Gender != nil {
		g, ok := matador.ParseGender(*body.Gender)
		if !ok {
			return nil, nil, "gender must be one of: male, female"
		}
		setClauses = append(setClauses, "gender = @gender")
		args["gender"] = string(g)
	}
	if body.HeightCM != nil {
		if *body.HeightCM <= 0 || *body.HeightCM > 300 {
			return nil, nil, "height_cm must be between 0 and 300"
		}
		setClauses = append(setClauses, "height_cm = @heightCM")
		args["heightCM"] = *body.HeightCM
	}
	if body.WeightKG != nil {
		if *body.WeightKG <= 0 || *body.WeightKG > 700 {
			return nil, nil, "weight_kg must be between 0 and 700"
		}
		setClauses = append(setClauses, "weight_kg = @weightKG")
		args["weightKG"] = *body.WeightKG
	}
	if body.Age != nil {
		if *body.Age <= 0 || *body.Age > 130 {
			return nil, nil, "age must be between 1 and 130"
		}
		setClauses = append(setClauses, "age = @age")
		args["age"] = *body.Age
	}
	if body.ActivityLevel != nil {
		lvl, ok := matador.ParseActivityLevel(*body.ActivityLevel)
		if !ok {
			return nil, nil, "activity_level must be one of: sedentary, lightly_active, moderately_active, very_active, extra_active"
		}
		setClauses = append(setClauses, "activity_level = @activityLevel")
		args["activityLevel"] = string(lvl)
	}
	if body.Goal != nil {
		goal, ok := matador.ParseGoal(*body.Goal)
		if !ok {
			return nil, nil, "goal must be one of: lose_weight, maintain_weight, gain_muscle"
		}
		setClauses = append(setClauses, "goal = @goal")
		args["goal"] = string(goal)
	}
	return setClauses, args, ""
}

// populateComputed fills the db:"-" fields from the engine. BMR and TDEE are
// only set for a complete profile; the target and cycle are always set.
func (h *Handler) populateComputed(p *userProfile, ts matador.TimeSource) {
	eng := p.toEngine()
	if bmr, ok := eng.BMR(); ok {
		rounded := int(math.Round(bmr))
		p.ComputedBMR = &rounded
	}
	if tdee, ok := eng.TDEE(); ok {
		p.ComputedTDEE = &tdee
	}

	snap := matador.ComputeSnapshot(matador.Inputs{
		Profile:         eng,
		Now:             ts.Now(),
		Calendar:        ts.Calendar(),
		GoalMultipliers: h.dashboard.Goals(),
	})
	p.ComputedTarget = &snap.CalorieTarget
	p.Cycle = &snap.Cycle
}
