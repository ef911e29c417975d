package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

// reminderTarget is a user with a cycle start date, as selected by the sweep.
type reminderTarget struct {
	UserID   int    `db:"user_id"`
	Timezone string `db:"timezone"`
}

// reminderSweep periodically reports users who haven't logged today's
// weight. Delivery is a log line for now.
type reminderSweep struct {
	db        *pgxpool.Pool
	dashboard *matador.Aggregator
	clock     matador.Clock
	hour      int
}

// Start schedules the sweep on spec (standard 5-field cron) and starts the
// scheduler. The caller stops it on shutdown.
func (s *reminderSweep) Start(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Run(context.Background()) }); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// Run performs one sweep.
func (s *reminderSweep) Run(ctx context.Context) {
	targets, err := queryMany[reminderTarget](s.db, ctx,
		`SELECT u.id AS user_id, u.timezone
		 FROM users u
		 JOIN user_profiles p ON p.user_id = u.id
		 WHERE p.cycle_start_date IS NOT NULL`,
		pgx.NamedArgs{})
	if err != nil {
		log.Printf("[reminders] candidate query failed: %v", err)
		return
	}

	due := dueReminders(ctx, s.dashboard, s.clock, s.hour, targets)
	for _, userID := range due {
		log.Printf("[reminders] user %d: weight not logged today", userID)
	}
	log.Printf("[reminders] sweep done: %d candidate(s), %d reminder(s)", len(targets), len(due))
}

// dueReminders returns the users whose local hour is at or past hour and
// whose snapshot has WeightReminder set. Snapshot failures skip the user.
func dueReminders(ctx context.Context, agg *matador.Aggregator, clock matador.Clock, hour int, targets []reminderTarget) []int {
	var due []int
	for _, t := range targets {
		ts := matador.InZone(clock, resolveLocation(t.UserID, t.Timezone))
		if ts.Now().In(ts.Calendar().Location).Hour() < hour {
			continue
		}
		snap, err := agg.Snapshot(ctx, t.UserID, ts)
		if err != nil {
			log.Printf("[reminders] snapshot failed for user %d: %v", t.UserID, err)
			continue
		}
		if snap.WeightReminder {
			due = append(due, t.UserID)
		}
	}
	return due
}
