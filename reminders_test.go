package main

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

func TestDueReminders(t *testing.T) {
	weighedToday := []matador.WeightLogEntry{
		{WeightKg: 81, LoggedAt: testNow.Add(-8 * time.Hour), CreatedAt: testNow.Add(-8 * time.Hour)},
	}
	profiles := memProfiles{
		1: testProfile(daysAgo(5)),
		2: testProfile(daysAgo(5)),
		3: testProfile(daysAgo(5)),
		4: testProfile(daysAgo(5)),
		5: testProfile(daysAgo(0)),
	}
	agg := matador.NewAggregator(profiles, memWeights{3: weighedToday}, memMeals{}, nil)

	targets := []reminderTarget{
		{UserID: 1, Timezone: "UTC"},                 // 18:00, nothing logged
		{UserID: 2, Timezone: "America/Los_Angeles"}, // 11:00, too early
		{UserID: 3, Timezone: "UTC"},                 // already weighed in
		{UserID: 4, Timezone: "Nowhere/Special"},     // unknown zone falls back to UTC
		{UserID: 5, Timezone: "UTC"},                 // cycle day 1
	}

	got := dueReminders(context.Background(), agg, matador.FixedClock(testNow), 18, targets)
	if want := []int{1, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("due = %v, want %v", got, want)
	}
}

func TestDueReminders_HourGate(t *testing.T) {
	agg := matador.NewAggregator(memProfiles{1: testProfile(daysAgo(5))}, memWeights{}, memMeals{}, nil)
	targets := []reminderTarget{{UserID: 1, Timezone: "UTC"}}

	cases := []struct {
		hour int
		want int
	}{
		{0, 1},
		{18, 1},
		{19, 0},
	}
	for _, tc := range cases {
		got := dueReminders(context.Background(), agg, matador.FixedClock(testNow), tc.hour, targets)
		if len(got) != tc.want {
			t.Errorf("hour %d: due = %v, want %d reminder(s)", tc.hour, got, tc.want)
		}
	}
}

func TestReminderSweep_InvalidSchedule(t *testing.T) {
	s := &reminderSweep{}
	if _, err := s.Start("every tuesday"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}
