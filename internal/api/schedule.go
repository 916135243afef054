package api

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/lbradley/daybook/internal/constants"
	"github.com/lbradley/daybook/internal/generator"
	"github.com/lbradley/daybook/internal/logger"
	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/storage"
	"github.com/lbradley/daybook/internal/utils"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": constants.Version,
	})
}

func (s *Server) getToday(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.store.GetPreferences()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeStoreError(w, err)
		return
	}
	today, err := utils.TodayInTimezone(prefs.Timezone)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeSchedule(w, today)
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if !utils.ValidateDateFormat(date) {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	s.writeSchedule(w, date)
}

func (s *Server) writeSchedule(w http.ResponseWriter, date string) {
	sched, err := s.store.GetSchedule(date)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if !utils.ValidateDateFormat(date) {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	analysis, err := s.analyzeDay(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) generateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !utils.ValidateDateFormat(req.Date) {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	sched, err := s.generateDraft(r.Context(), req.Date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.SaveSchedule(sched); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sched)
}

// analyzeDay runs the pre-planning pipeline against stored state.
func (s *Server) analyzeDay(date string) (models.DayAnalysis, error) {
	prefs, err := s.store.GetPreferences()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.DayAnalysis{}, err
	}
	commitments, err := s.store.GetCommitmentsForDate(date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.DayAnalysis{}, err
	}
	deadlines, err := s.store.GetDeadlines()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.DayAnalysis{}, err
	}
	return s.sched.AnalyzeDay(date, prefs, commitments, deadlines)
}

// generateDraft produces a validated schedule draft. Generator output is
// untrusted; a draft that fails interval validation is discarded in favor of
// the offline fallback.
func (s *Server) generateDraft(ctx context.Context, date string) (models.DailySchedule, error) {
	analysis, err := s.analyzeDay(date)
	if err != nil {
		return models.DailySchedule{}, err
	}
	prefs, err := s.store.GetPreferences()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.DailySchedule{}, err
	}
	commitments, err := s.store.GetCommitmentsForDate(date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.DailySchedule{}, err
	}

	req := generator.GenerateRequest{
		Date:        date,
		Preferences: prefs,
		Commitments: commitments,
		Analysis:    analysis,
	}

	resp, err := s.gen.GenerateSchedule(ctx, req)
	if err == nil {
		if draft, ok := s.draftFrom(date, resp); ok {
			return draft, nil
		}
		logger.Warn("generator draft failed validation, using fallback", "date", date)
	} else {
		logger.Warn("generator unavailable, using fallback", "date", date, "err", err)
	}

	resp, err = s.fallback.GenerateSchedule(ctx, req)
	if err != nil {
		return models.DailySchedule{}, err
	}
	draft, ok := s.draftFrom(date, resp)
	if !ok {
		return models.DailySchedule{}, errors.New("fallback generator produced an invalid draft")
	}
	return draft, nil
}

func (s *Server) draftFrom(date string, resp generator.GenerateResponse) (models.DailySchedule, bool) {
	blocks := make([]models.TimeBlock, len(resp.Blocks))
	copy(blocks, resp.Blocks)
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Start < blocks[j].Start
	})

	draft := models.DailySchedule{
		Date:        date,
		Blocks:      blocks,
		AIReasoning: resp.Reasoning,
		Source:      models.SourceAIGenerated,
	}
	if result := s.validator.ValidateSchedule(draft); result.HasConflicts() {
		return models.DailySchedule{}, false
	}
	return draft, true
}
