package reconcile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lbradley/daybook/internal/drift"
	"github.com/lbradley/daybook/internal/generator"
	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/storage"
)

// scriptedGenerator returns canned replan output or a canned error.
type scriptedGenerator struct {
	blocks []models.TimeBlock
	err    error
}

func (g *scriptedGenerator) GenerateSchedule(_ context.Context, _ generator.GenerateRequest) (generator.GenerateResponse, error) {
	return generator.GenerateResponse{Blocks: g.blocks}, g.err
}

func (g *scriptedGenerator) ReplanRemainder(_ context.Context, _ generator.ReplanRequest) ([]models.TimeBlock, error) {
	return g.blocks, g.err
}

func testBlock(start, end, title string) models.TimeBlock {
	return models.TimeBlock{
		Start: start, End: end, Title: title,
		Type: models.BlockStudy, Source: models.SourceAIGenerated,
	}
}

func setupCoordinator(t *testing.T, gen generator.Generator) (*Coordinator, storage.Provider, string) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "daybook.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("store init: %v", err)
	}

	sched := models.DailySchedule{
		Date:   "2026-03-02",
		Source: models.SourceAIGenerated,
		Blocks: []models.TimeBlock{
			testBlock("09:00", "10:00", "Morning review"),
			testBlock("14:00", "15:00", "Reading"),
			testBlock("16:00", "17:00", "Problem set"),
		},
	}
	if err := store.SaveSchedule(sched); err != nil {
		t.Fatal(err)
	}

	detector := drift.NewDetectorWithClock(store, func() time.Time {
		return time.Date(2026, 3, 2, 15, 10, 0, 0, time.UTC)
	})
	result, err := detector.Check("2026-03-02", "14:00", "Reading", 60, 100)
	if err != nil {
		t.Fatal(err)
	}

	return New(store, gen, detector), store, result.Event.ID
}

func TestSuggest(t *testing.T) {
	t.Run("generator output is sanitized and returned", func(t *testing.T) {
		gen := &scriptedGenerator{blocks: []models.TimeBlock{
			testBlock("15:30", "16:30", "Reading (shortened)"),
			testBlock("16:30", "17:30", "Problem set"),
		}}
		c, _, eventID := setupCoordinator(t, gen)

		blocks, err := c.Suggest(context.Background(), eventID, "2026-03-02", "15:30", nil)
		if err != nil {
			t.Fatalf("Suggest() error: %v", err)
		}
		if len(blocks) != 2 {
			t.Fatalf("got %d blocks, want 2: %+v", len(blocks), blocks)
		}
		if blocks[0].Start != "15:30" || blocks[1].End != "17:30" {
			t.Errorf("unexpected envelope: %+v", blocks)
		}
	})

	t.Run("generator failure degrades to the unmodified remainder", func(t *testing.T) {
		gen := &scriptedGenerator{err: errors.New("upstream down")}
		c, _, eventID := setupCoordinator(t, gen)

		blocks, err := c.Suggest(context.Background(), eventID, "2026-03-02", "15:30", nil)
		if !errors.Is(err, ErrSuggestionUnavailable) {
			t.Fatalf("Suggest() error = %v, want ErrSuggestionUnavailable", err)
		}
		// The stored remainder (16:00 block) comes back untouched.
		if len(blocks) != 1 || blocks[0].Title != "Problem set" {
			t.Errorf("fallback remainder = %+v, want the stored 16:00 block", blocks)
		}
	})

	t.Run("illegal generator output is clipped not trusted", func(t *testing.T) {
		gen := &scriptedGenerator{blocks: []models.TimeBlock{
			testBlock("15:00", "16:30", "Starts before now"),
			testBlock("16:00", "17:00", "Overlaps previous"),
			testBlock("21:30", "23:30", "Runs past sleep"),
		}}
		c, _, eventID := setupCoordinator(t, gen)

		blocks, err := c.Suggest(context.Background(), eventID, "2026-03-02", "15:30", nil)
		if err != nil {
			t.Fatalf("Suggest() error: %v", err)
		}
		for i, b := range blocks {
			if b.Start < "15:30" {
				t.Errorf("block %d starts before current time: %+v", i, b)
			}
			if b.End > "22:00" {
				t.Errorf("block %d runs past sleep: %+v", i, b)
			}
			if i > 0 && blocks[i-1].End > b.Start {
				t.Errorf("blocks %d and %d overlap: %+v", i-1, i, blocks)
			}
		}
	})

	t.Run("date mismatch is rejected", func(t *testing.T) {
		c, _, eventID := setupCoordinator(t, &scriptedGenerator{})
		if _, err := c.Suggest(context.Background(), eventID, "2026-03-03", "15:30", nil); err == nil {
			t.Error("expected error for mismatched schedule date")
		}
	})

	t.Run("invalid current time is rejected", func(t *testing.T) {
		c, _, eventID := setupCoordinator(t, &scriptedGenerator{})
		if _, err := c.Suggest(context.Background(), eventID, "2026-03-02", "3pm", nil); err == nil {
			t.Error("expected error for invalid current time")
		}
	})
}

func TestAccept(t *testing.T) {
	t.Run("persists the merged schedule and closes the event", func(t *testing.T) {
		c, store, eventID := setupCoordinator(t, &scriptedGenerator{})

		remainder := []models.TimeBlock{
			testBlock("15:30", "16:15", "Reading (shortened)"),
			testBlock("16:15", "17:15", "Problem set"),
		}
		updated, err := c.Accept(eventID, "2026-03-02", "15:30", remainder)
		if err != nil {
			t.Fatalf("Accept() error: %v", err)
		}

		// Past blocks survive, the remainder is replaced.
		if len(updated.Blocks) != 4 {
			t.Fatalf("got %d blocks, want 4: %+v", len(updated.Blocks), updated.Blocks)
		}
		if updated.Blocks[0].Title != "Morning review" || updated.Blocks[2].Title != "Reading (shortened)" {
			t.Errorf("merge order wrong: %+v", updated.Blocks)
		}

		stored, err := store.GetSchedule("2026-03-02")
		if err != nil {
			t.Fatal(err)
		}
		if len(stored.Blocks) != 4 {
			t.Errorf("stored %d blocks, want 4", len(stored.Blocks))
		}

		event, err := store.GetDriftEvent(eventID)
		if err != nil {
			t.Fatal(err)
		}
		if !event.Resolved || event.UserChoice != models.DriftChoiceRescheduled {
			t.Errorf("event not closed via reschedule: %+v", event)
		}
	})

	t.Run("remainder colliding with a past block is rejected", func(t *testing.T) {
		c, store, eventID := setupCoordinator(t, &scriptedGenerator{})

		// 14:00-15:00 "Reading" is in the past at 14:30 and the new remainder
		// would overlap it.
		remainder := []models.TimeBlock{testBlock("14:30", "15:30", "Clash")}
		if _, err := c.Accept(eventID, "2026-03-02", "14:30", remainder); err == nil {
			t.Fatal("expected overlap rejection")
		}

		// Nothing was persisted and the event stays open.
		event, err := store.GetDriftEvent(eventID)
		if err != nil {
			t.Fatal(err)
		}
		if event.Resolved {
			t.Error("event resolved despite rejected accept")
		}
	})
}

func TestKeepOriginal(t *testing.T) {
	c, store, eventID := setupCoordinator(t, &scriptedGenerator{})

	if err := c.KeepOriginal(eventID); err != nil {
		t.Fatalf("KeepOriginal() error: %v", err)
	}
	event, err := store.GetDriftEvent(eventID)
	if err != nil {
		t.Fatal(err)
	}
	if !event.Resolved || event.UserChoice != models.DriftChoiceKeptOriginal {
		t.Errorf("event not closed via keep-original: %+v", event)
	}

	sched, err := store.GetSchedule("2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(sched.Blocks) != 3 {
		t.Errorf("schedule changed by keep-original: %+v", sched.Blocks)
	}
}

func TestSanitize(t *testing.T) {
	t.Run("sorts clips and de-overlaps", func(t *testing.T) {
		blocks := []models.TimeBlock{
			testBlock("18:00", "19:00", "C"),
			testBlock("15:00", "16:30", "A"),
			testBlock("16:00", "17:00", "B"),
		}
		out := Sanitize(blocks, "15:30", "22:00")
		if len(out) != 3 {
			t.Fatalf("got %d blocks, want 3: %+v", len(out), out)
		}
		if out[0].Start != "15:30" || out[0].End != "16:30" {
			t.Errorf("first block = %s-%s, want 15:30-16:30", out[0].Start, out[0].End)
		}
		if out[1].Start != "16:30" || out[1].End != "17:00" {
			t.Errorf("second block = %s-%s, want 16:30-17:00", out[1].Start, out[1].End)
		}
	})

	t.Run("drops blocks squeezed to nothing", func(t *testing.T) {
		blocks := []models.TimeBlock{
			testBlock("15:00", "16:00", "A"),
			testBlock("15:00", "15:45", "Swallowed"),
			testBlock("21:45", "22:30", "Clipped"),
			testBlock("22:30", "23:00", "Past sleep"),
		}
		out := Sanitize(blocks, "15:00", "22:00")
		if len(out) != 2 {
			t.Fatalf("got %d blocks, want 2: %+v", len(out), out)
		}
		if out[1].Start != "21:45" || out[1].End != "22:00" {
			t.Errorf("clipped block = %s-%s, want 21:45-22:00", out[1].Start, out[1].End)
		}
	})

	t.Run("invalid inputs yield nil", func(t *testing.T) {
		if out := Sanitize(nil, "junk", "22:00"); out != nil {
			t.Errorf("expected nil for invalid current time, got %+v", out)
		}
		blocks := []models.TimeBlock{testBlock("16:00", "15:00", "Backwards")}
		if out := Sanitize(blocks, "15:00", "22:00"); len(out) != 0 {
			t.Errorf("expected backwards block dropped, got %+v", out)
		}
	})
}
