package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lbradley/daybook/internal/models"
)

func setupJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	store := NewJSONStore(filepath.Join(t.TempDir(), "daybook.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	return store
}

func TestJSONStoreLifecycle(t *testing.T) {
	t.Run("init twice fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "daybook.json")
		store := NewJSONStore(path)
		if err := store.Init(); err != nil {
			t.Fatalf("Init() error: %v", err)
		}
		if err := NewJSONStore(path).Init(); err == nil {
			t.Error("second Init() should fail on an existing file")
		}
	})

	t.Run("load before init fails", func(t *testing.T) {
		store := NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
		if err := store.Load(); err == nil {
			t.Error("Load() on a missing file should fail")
		}
	})

	t.Run("state survives a reload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "daybook.json")
		store := NewJSONStore(path)
		if err := store.Init(); err != nil {
			t.Fatal(err)
		}
		prefs := models.Preferences{WakeTime: "06:30", SleepTime: "23:00", Timezone: "Europe/Rome"}
		if err := store.SavePreferences(prefs); err != nil {
			t.Fatal(err)
		}

		reopened := NewJSONStore(path)
		if err := reopened.Load(); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		got, err := reopened.GetPreferences()
		if err != nil {
			t.Fatal(err)
		}
		if got != prefs {
			t.Errorf("preferences = %+v, want %+v", got, prefs)
		}
	})
}

func TestJSONStoreCommitments(t *testing.T) {
	store := setupJSONStore(t)

	c := models.Commitment{
		ID: "c1", Date: "2026-03-02", Start: "09:00", End: "10:30",
		Title: "Lecture", Type: models.CommitmentClass, CourseID: "CS101",
	}
	if err := store.AddCommitment(c); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetCommitment("c1")
	if err != nil {
		t.Fatal(err)
	}
	if got != c {
		t.Errorf("GetCommitment() = %+v, want %+v", got, c)
	}

	c.Title = "Lecture (moved)"
	if err := store.UpdateCommitment(c); err != nil {
		t.Fatal(err)
	}

	// Ordered by start time for the target date only.
	other := models.Commitment{ID: "c2", Date: "2026-03-02", Start: "07:30", End: "08:30", Title: "Gym"}
	elsewhere := models.Commitment{ID: "c3", Date: "2026-03-03", Start: "09:00", End: "10:00", Title: "Other day"}
	store.AddCommitment(other)
	store.AddCommitment(elsewhere)

	list, err := store.GetCommitmentsForDate("2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "c2" || list[1].ID != "c1" {
		t.Errorf("GetCommitmentsForDate() = %+v", list)
	}

	if err := store.DeleteCommitment("c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetCommitment("c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCommitment(deleted) error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteCommitment("c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteCommitment(missing) error = %v, want ErrNotFound", err)
	}
}

func TestJSONStoreDeadlines(t *testing.T) {
	store := setupJSONStore(t)

	store.AddDeadline(models.Deadline{ID: "d2", Title: "Later", DueDate: "2026-03-10"})
	store.AddDeadline(models.Deadline{ID: "d1", Title: "Sooner", DueDate: "2026-03-04"})

	list, err := store.GetDeadlines()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "d1" {
		t.Errorf("GetDeadlines() not ordered by due date: %+v", list)
	}

	if err := store.DeleteDeadline("d1"); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteDeadline("d1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteDeadline(missing) error = %v, want ErrNotFound", err)
	}
}

func TestJSONStoreSchedules(t *testing.T) {
	store := setupJSONStore(t)

	sched := models.DailySchedule{
		Date:   "2026-03-02",
		Source: models.SourceAIGenerated,
		Blocks: []models.TimeBlock{
			{Start: "09:00", End: "10:00", Title: "Focus", Type: models.BlockStudy, Source: models.SourceAIGenerated},
		},
		AIReasoning: "One quiet morning slot.",
	}
	if err := store.SaveSchedule(sched); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetSchedule("2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Blocks) != 1 || got.AIReasoning != sched.AIReasoning {
		t.Errorf("GetSchedule() = %+v", got)
	}

	// Saving again replaces, never appends.
	sched.Blocks = append(sched.Blocks, models.TimeBlock{
		Start: "11:00", End: "12:00", Title: "More", Type: models.BlockStudy, Source: models.SourceManual,
	})
	if err := store.SaveSchedule(sched); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetSchedule("2026-03-02")
	if len(got.Blocks) != 2 {
		t.Errorf("blocks after resave = %d, want 2", len(got.Blocks))
	}

	// A soft-deleted schedule reads as missing.
	deletedAt := "2026-03-02T20:00:00Z"
	sched.DeletedAt = &deletedAt
	if err := store.SaveSchedule(sched); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetSchedule("2026-03-02"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSchedule(soft-deleted) error = %v, want ErrNotFound", err)
	}

	if _, err := store.GetSchedule("2026-12-25"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSchedule(missing) error = %v, want ErrNotFound", err)
	}
}

func TestJSONStoreFeedbackUpsert(t *testing.T) {
	store := setupJSONStore(t)

	actual := 55
	fb := models.BlockFeedback{
		ScheduleDate: "2026-03-02", BlockStartTime: "14:00",
		Completed: true, ActualTimeSpent: &actual,
		EnergyRating: 3, SubmittedAt: "2026-03-02T15:00:00Z",
	}
	if err := store.SaveFeedback(fb); err != nil {
		t.Fatal(err)
	}

	// Last write wins for the same (date, start) key.
	revised := 40
	fb.ActualTimeSpent = &revised
	fb.SubmittedAt = "2026-03-02T15:05:00Z"
	if err := store.SaveFeedback(fb); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetFeedback("2026-03-02", "14:00")
	if err != nil {
		t.Fatal(err)
	}
	if got.ActualTimeSpent == nil || *got.ActualTimeSpent != 40 {
		t.Errorf("ActualTimeSpent = %v, want 40", got.ActualTimeSpent)
	}

	list, err := store.GetFeedbackForDate("2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("feedback entries = %d, want 1 after upsert", len(list))
	}

	if _, err := store.GetFeedback("2026-03-02", "09:00"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetFeedback(missing) error = %v, want ErrNotFound", err)
	}
}

func TestJSONStoreDriftEvents(t *testing.T) {
	store := setupJSONStore(t)

	e1 := models.DriftEvent{
		ID: "e1", ScheduleDate: "2026-03-02", BlockStartTime: "09:00",
		BlockTitle: "A", PlannedDuration: 30, ActualDuration: 55,
		DriftMinutes: 25, CumulativeDrift: 25, CreatedAt: "2026-03-02T10:00:00Z",
	}
	e2 := models.DriftEvent{
		ID: "e2", ScheduleDate: "2026-03-02", BlockStartTime: "11:00",
		BlockTitle: "B", PlannedDuration: 60, ActualDuration: 60,
		CreatedAt: "2026-03-02T12:00:00Z",
	}
	if err := store.AddDriftEvent(e1); err != nil {
		t.Fatal(err)
	}
	if err := store.AddDriftEvent(e2); err != nil {
		t.Fatal(err)
	}
	if err := store.AddDriftEvent(e1); err == nil {
		t.Error("AddDriftEvent() with a duplicate id should fail")
	}

	resolvedAt := "2026-03-02T12:30:00Z"
	e2.Resolved = true
	e2.UserChoice = models.DriftChoiceKeptOriginal
	e2.ResolvedAt = &resolvedAt
	if err := store.UpdateDriftEvent(e2); err != nil {
		t.Fatal(err)
	}

	all, err := store.GetDriftEventsForDate("2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "e1" {
		t.Errorf("GetDriftEventsForDate() = %+v", all)
	}

	open, err := store.GetUnresolvedDriftEvents("2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 1 || open[0].ID != "e1" {
		t.Errorf("GetUnresolvedDriftEvents() = %+v", open)
	}

	if err := store.UpdateDriftEvent(models.DriftEvent{ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateDriftEvent(missing) error = %v, want ErrNotFound", err)
	}
}
