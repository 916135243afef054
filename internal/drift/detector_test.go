package drift

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/storage"
)

func newTestStore(t *testing.T) *storage.JSONStore {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "daybook.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("store init: %v", err)
	}
	return store
}

func newTestDetector(t *testing.T, store storage.Provider) (*Detector, *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	clock := &now
	return NewDetectorWithClock(store, func() time.Time { return *clock }), clock
}

func TestCheck(t *testing.T) {
	t.Run("overrun below thresholds", func(t *testing.T) {
		store := newTestStore(t)
		d, _ := newTestDetector(t, store)

		result, err := d.Check("2026-03-02", "14:00", "Reading", 30, 55)
		if err != nil {
			t.Fatalf("Check() error: %v", err)
		}
		if !result.Drift || result.DriftMinutes != 25 {
			t.Errorf("DriftMinutes = %d (drift=%v), want 25", result.DriftMinutes, result.Drift)
		}
		if result.CumulativeDrift != 25 {
			t.Errorf("CumulativeDrift = %d, want 25", result.CumulativeDrift)
		}
		if !result.Material {
			t.Error("Material = false, want true (25 > 10)")
		}
		if result.RequiresReschedule {
			t.Error("RequiresReschedule = true, want false (25 <= 30)")
		}
		if result.Event == nil || result.Event.Resolved {
			t.Errorf("expected an open event, got %+v", result.Event)
		}
	})

	t.Run("exact durations record zero drift", func(t *testing.T) {
		store := newTestStore(t)
		d, _ := newTestDetector(t, store)

		result, err := d.Check("2026-03-02", "14:00", "Reading", 30, 30)
		if err != nil {
			t.Fatalf("Check() error: %v", err)
		}
		if result.Drift || result.DriftMinutes != 0 || result.Material {
			t.Errorf("zero drift misreported: %+v", result)
		}
	})

	t.Run("finishing early counts negative", func(t *testing.T) {
		store := newTestStore(t)
		d, _ := newTestDetector(t, store)

		if _, err := d.Check("2026-03-02", "09:00", "A", 60, 100); err != nil {
			t.Fatal(err)
		}
		result, err := d.Check("2026-03-02", "11:00", "B", 60, 30)
		if err != nil {
			t.Fatalf("Check() error: %v", err)
		}
		if result.DriftMinutes != -30 {
			t.Errorf("DriftMinutes = %d, want -30", result.DriftMinutes)
		}
		if result.CumulativeDrift != 10 {
			t.Errorf("CumulativeDrift = %d, want 10 (40 - 30)", result.CumulativeDrift)
		}
		if result.Material {
			t.Error("Material = true at exactly the threshold, want false")
		}
	})

	t.Run("resubmission updates the open event in place", func(t *testing.T) {
		store := newTestStore(t)
		d, _ := newTestDetector(t, store)

		first, err := d.Check("2026-03-02", "14:00", "Reading", 30, 55)
		if err != nil {
			t.Fatal(err)
		}
		second, err := d.Check("2026-03-02", "14:00", "Reading", 30, 40)
		if err != nil {
			t.Fatal(err)
		}
		if second.Event.ID != first.Event.ID {
			t.Errorf("resubmission created a new event: %s vs %s", second.Event.ID, first.Event.ID)
		}
		if second.CumulativeDrift != 10 {
			t.Errorf("CumulativeDrift = %d, want 10 (the 25 was replaced)", second.CumulativeDrift)
		}

		events, err := store.GetDriftEventsForDate("2026-03-02")
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 1 {
			t.Errorf("stored events = %d, want 1", len(events))
		}
	})

	t.Run("cumulative crosses the reschedule threshold", func(t *testing.T) {
		store := newTestStore(t)
		d, clock := newTestDetector(t, store)

		if _, err := d.Check("2026-03-02", "09:00", "A", 30, 50); err != nil {
			t.Fatal(err)
		}
		*clock = clock.Add(time.Hour)
		result, err := d.Check("2026-03-02", "11:00", "B", 30, 45)
		if err != nil {
			t.Fatal(err)
		}
		if result.CumulativeDrift != 35 {
			t.Errorf("CumulativeDrift = %d, want 35", result.CumulativeDrift)
		}
		if !result.RequiresReschedule {
			t.Error("RequiresReschedule = false, want true (35 > 30)")
		}
	})

	t.Run("input validation", func(t *testing.T) {
		store := newTestStore(t)
		d, _ := newTestDetector(t, store)

		cases := []struct {
			date, start       string
			planned, actual   int
		}{
			{"03/02/2026", "14:00", 30, 55},
			{"2026-03-02", "2pm", 30, 55},
			{"2026-03-02", "14:00", 0, 55},
			{"2026-03-02", "14:00", -30, 55},
			{"2026-03-02", "14:00", 30, -5},
		}
		for _, c := range cases {
			if _, err := d.Check(c.date, c.start, "X", c.planned, c.actual); err == nil {
				t.Errorf("Check(%q, %q, %d, %d) expected error", c.date, c.start, c.planned, c.actual)
			}
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("keep original is terminal but keeps counting", func(t *testing.T) {
		store := newTestStore(t)
		d, clock := newTestDetector(t, store)

		first, err := d.Check("2026-03-02", "09:00", "A", 30, 50)
		if err != nil {
			t.Fatal(err)
		}
		*clock = clock.Add(time.Minute)
		resolved, err := d.Resolve(first.Event.ID, models.DriftChoiceKeptOriginal)
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if !resolved.Resolved || resolved.UserChoice != models.DriftChoiceKeptOriginal || resolved.ResolvedAt == nil {
			t.Errorf("event not closed properly: %+v", resolved)
		}

		// Acknowledging drift does not undo its effect downstream.
		*clock = clock.Add(time.Minute)
		next, err := d.Check("2026-03-02", "11:00", "B", 30, 45)
		if err != nil {
			t.Fatal(err)
		}
		if next.CumulativeDrift != 35 {
			t.Errorf("CumulativeDrift = %d, want 35 (kept-original still counts)", next.CumulativeDrift)
		}
	})

	t.Run("reschedule resets the cumulative counter", func(t *testing.T) {
		store := newTestStore(t)
		d, clock := newTestDetector(t, store)

		first, err := d.Check("2026-03-02", "09:00", "A", 30, 50)
		if err != nil {
			t.Fatal(err)
		}
		*clock = clock.Add(time.Minute)
		if _, err := d.Resolve(first.Event.ID, models.DriftChoiceRescheduled); err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}

		*clock = clock.Add(time.Minute)
		next, err := d.Check("2026-03-02", "11:00", "B", 30, 45)
		if err != nil {
			t.Fatal(err)
		}
		if next.CumulativeDrift != 15 {
			t.Errorf("CumulativeDrift = %d, want 15 (counter reset by reschedule)", next.CumulativeDrift)
		}
	})

	t.Run("double resolution is rejected", func(t *testing.T) {
		store := newTestStore(t)
		d, clock := newTestDetector(t, store)

		result, err := d.Check("2026-03-02", "09:00", "A", 30, 50)
		if err != nil {
			t.Fatal(err)
		}
		*clock = clock.Add(time.Minute)
		if _, err := d.Resolve(result.Event.ID, models.DriftChoiceKeptOriginal); err != nil {
			t.Fatal(err)
		}
		if _, err := d.Resolve(result.Event.ID, models.DriftChoiceRescheduled); err == nil {
			t.Error("expected error resolving an already-resolved event")
		}
	})

	t.Run("invalid choice is rejected", func(t *testing.T) {
		store := newTestStore(t)
		d, _ := newTestDetector(t, store)

		result, err := d.Check("2026-03-02", "09:00", "A", 30, 50)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.Resolve(result.Event.ID, models.DriftChoice("shrugged")); err == nil {
			t.Error("expected error for invalid choice")
		}
	})

	t.Run("unknown event id", func(t *testing.T) {
		store := newTestStore(t)
		d, _ := newTestDetector(t, store)
		if _, err := d.Resolve("nope", models.DriftChoiceKeptOriginal); err == nil {
			t.Error("expected error for unknown event")
		}
	})
}

func TestAffectedBlocks(t *testing.T) {
	store := newTestStore(t)
	d, _ := newTestDetector(t, store)

	sched := models.DailySchedule{
		Date:   "2026-03-02",
		Source: models.SourceManual,
		Blocks: []models.TimeBlock{
			{Start: "09:00", End: "10:00", Title: "A", Type: models.BlockStudy, Source: models.SourceManual},
			{Start: "11:00", End: "12:00", Title: "B", Type: models.BlockStudy, Source: models.SourceManual},
			{Start: "14:00", End: "15:00", Title: "C", Type: models.BlockStudy, Source: models.SourceManual},
		},
	}
	if err := store.SaveSchedule(sched); err != nil {
		t.Fatal(err)
	}

	result, err := d.Check("2026-03-02", "09:00", "A", 60, 90)
	if err != nil {
		t.Fatal(err)
	}
	if result.Event.AffectedBlocksCount != 2 {
		t.Errorf("AffectedBlocksCount = %d, want 2", result.Event.AffectedBlocksCount)
	}
}
