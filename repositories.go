package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

/* ─── Profile ────────────────────────────────────────────────────────── */

// profileStore reads user_profiles for the dashboard engine.
type profileStore struct{ db *pgxpool.Pool }

// FetchProfile returns nil, nil when the user never finished onboarding.
func (s *profileStore) FetchProfile(ctx context.Context, userID int) (*matador.UserProfile, error) {
	p, err := queryOne[userProfile](s.db, ctx,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user_profiles: %w", err)
	}
	return p.toEngine(), nil
}

/* ─── Weight log ─────────────────────────────────────────────────────── */

type weightLogStore struct{ db *pgxpool.Pool }

func (s *weightLogStore) FetchAll(ctx context.Context, userID int) ([]matador.WeightLogEntry, error) {
	rows, err := queryMany[weightEntry](s.db, ctx,
		"SELECT * FROM weight_log WHERE user_id = @userID ORDER BY logged_at",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, fmt.Errorf("query weight_log: %w", err)
	}
	out := make([]matador.WeightLogEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toEngine()
	}
	return out, nil
}

/* ─── Meal log ───────────────────────────────────────────────────────── */

type mealLogStore struct{ db *pgxpool.Pool }

// FetchForDay returns the meals logged on day's calendar date in day's
// location, using a half-open [midnight, next midnight) range.
func (s *mealLogStore) FetchForDay(ctx context.Context, userID int, day time.Time) ([]matador.MealLogEntry, error) {
	items, err := s.itemsForDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("query meal_log_items for day: %w", err)
	}
	out := make([]matador.MealLogEntry, len(items))
	for i, it := range items {
		out[i] = it.toEngine()
	}
	return out, nil
}

func (s *mealLogStore) FetchAll(ctx context.Context, userID int) ([]matador.MealLogEntry, error) {
	items, err := queryMany[mealLogItem](s.db, ctx,
		"SELECT * FROM meal_log_items WHERE user_id = @userID ORDER BY logged_at",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, fmt.Errorf("query meal_log_items: %w", err)
	}
	out := make([]matador.MealLogEntry, len(items))
	for i, it := range items {
		out[i] = it.toEngine()
	}
	return out, nil
}

// itemsForDay is shared by FetchForDay and the daily summary handler, which
// needs the full rows rather than engine entries.
func (s *mealLogStore) itemsForDay(ctx context.Context, userID int, day time.Time) ([]mealLogItem, error) {
	cal := matador.NewCalendar(day.Location())
	start := cal.StartOfDay(day)
	return queryMany[mealLogItem](s.db, ctx,
		`SELECT * FROM meal_log_items
		 WHERE user_id = @userID AND logged_at >= @start AND logged_at < @end
		 ORDER BY logged_at, created_at`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": cal.AddDays(start, 1)})
}
