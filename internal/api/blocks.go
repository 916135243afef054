package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/schedule"
	"github.com/lbradley/daybook/internal/storage"
	"github.com/lbradley/daybook/internal/utils"
)

func (s *Server) insertBlock(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if !utils.ValidateDateFormat(date) {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	var block models.TimeBlock
	if err := decodeJSON(r, &block); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if block.Source == "" {
		block.Source = models.SourceManual
	}

	sched, err := s.store.GetSchedule(date)
	if errors.Is(err, storage.ErrNotFound) {
		// Manual planning can start from an empty day.
		sched = models.DailySchedule{Date: date, Source: models.SourceManual}
	} else if err != nil {
		writeStoreError(w, err)
		return
	}

	updated, err := schedule.Insert(sched, block)
	if err != nil {
		writeBlockError(w, err)
		return
	}
	if err := s.store.SaveSchedule(updated); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, updated)
}

func (s *Server) updateBlock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	date, start := vars["date"], vars["start"]
	if !utils.ValidateDateFormat(date) || !utils.ValidateTimeFormat(start) {
		writeError(w, http.StatusBadRequest, "invalid date or start time")
		return
	}

	var content schedule.BlockContent
	if err := decodeJSON(r, &content); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	sched, err := s.store.GetSchedule(date)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	updated, err := schedule.UpdateContent(sched, start, content)
	if err != nil {
		writeBlockError(w, err)
		return
	}
	if err := s.store.SaveSchedule(updated); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteBlock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	date, start := vars["date"], vars["start"]
	if !utils.ValidateDateFormat(date) || !utils.ValidateTimeFormat(start) {
		writeError(w, http.StatusBadRequest, "invalid date or start time")
		return
	}

	sched, err := s.store.GetSchedule(date)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	updated, err := schedule.Delete(sched, start)
	if err != nil {
		writeBlockError(w, err)
		return
	}
	if err := s.store.SaveSchedule(updated); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) reorderBlocks(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if !utils.ValidateDateFormat(date) {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	sched, err := s.store.GetSchedule(date)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	updated, err := schedule.Reorder(sched, req.From, req.To)
	if err != nil {
		writeBlockError(w, err)
		return
	}
	if err := s.store.SaveSchedule(updated); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// writeBlockError maps block operation errors onto HTTP statuses.
func writeBlockError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrBlockNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, schedule.ErrOverlap), errors.Is(err, schedule.ErrNoRoom):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, schedule.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
