package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/reconcile"
	"github.com/lbradley/daybook/internal/storage"
	"github.com/lbradley/daybook/internal/utils"
)

func (s *Server) checkDrift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScheduleDate    string `json:"schedule_date"`
		BlockStartTime  string `json:"block_start_time"`
		BlockTitle      string `json:"block_title"`
		PlannedDuration int    `json:"planned_duration"`
		ActualDuration  int    `json:"actual_duration"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := s.detector.Check(req.ScheduleDate, req.BlockStartTime, req.BlockTitle, req.PlannedDuration, req.ActualDuration)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) listDriftEvents(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if !utils.ValidateDateFormat(date) {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	events, err := s.store.GetUnresolvedDriftEvents(date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []models.DriftEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) resolveDrift(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		UserChoice  models.DriftChoice `json:"user_choice"`
		CurrentTime string             `json:"current_time,omitempty"`
		NewSchedule []models.TimeBlock `json:"new_schedule_blocks,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	switch req.UserChoice {
	case models.DriftChoiceKeptOriginal:
		if err := s.coord.KeepOriginal(id); err != nil {
			writeStoreError(w, err)
			return
		}
		event, err := s.store.GetDriftEvent(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)

	case models.DriftChoiceRescheduled:
		if len(req.NewSchedule) == 0 {
			writeError(w, http.StatusBadRequest, "new_schedule_blocks required for reschedule resolution")
			return
		}
		if !utils.ValidateTimeFormat(req.CurrentTime) {
			writeError(w, http.StatusBadRequest, "invalid current_time, expected HH:MM")
			return
		}
		event, err := s.store.GetDriftEvent(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		updated, err := s.coord.Accept(id, event.ScheduleDate, req.CurrentTime, req.NewSchedule)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	default:
		writeError(w, http.StatusBadRequest, "user_choice must be rescheduled or kept_original")
	}
}

func (s *Server) aiReschedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		ScheduleDate    string             `json:"schedule_date"`
		CurrentTime     string             `json:"current_time"`
		RemainingBlocks []models.TimeBlock `json:"remaining_blocks,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	blocks, err := s.coord.Suggest(r.Context(), id, req.ScheduleDate, req.CurrentTime, req.RemainingBlocks)
	if err != nil {
		// Degraded mode: the caller gets the unmodified remainder back and
		// can still resolve the event manually.
		if errors.Is(err, reconcile.ErrSuggestionUnavailable) {
			writeJSON(w, http.StatusOK, map[string]any{
				"rescheduled_blocks": blocks,
				"degraded":           true,
				"error":              err.Error(),
			})
			return
		}
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rescheduled_blocks": blocks})
}
