package api

import (
	"net/http"
	"time"

	"github.com/lbradley/daybook/internal/drift"
	"github.com/lbradley/daybook/internal/logger"
	"github.com/lbradley/daybook/internal/models"
	"github.com/lbradley/daybook/internal/schedule"
	"github.com/lbradley/daybook/internal/utils"
)

type feedbackResponse struct {
	Feedback models.BlockFeedback `json:"feedback"`
	Drift    *drift.CheckResult   `json:"drift,omitempty"`
}

// submitFeedback upserts the block's feedback, then runs a best-effort drift
// check. The feedback write is the source of truth: a failed drift check is
// logged and the feedback still stands.
func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var fb models.BlockFeedback
	if err := decodeJSON(r, &fb); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !utils.ValidateDateFormat(fb.ScheduleDate) {
		writeError(w, http.StatusBadRequest, "invalid schedule_date, expected YYYY-MM-DD")
		return
	}
	if !utils.ValidateTimeFormat(fb.BlockStartTime) {
		writeError(w, http.StatusBadRequest, "invalid block_start_time, expected HH:MM")
		return
	}
	if fb.SubmittedAt == "" {
		fb.SubmittedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.store.SaveFeedback(fb); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := feedbackResponse{Feedback: fb}
	if result, ok := s.driftCheckForFeedback(fb); ok {
		resp.Drift = &result
	}
	writeJSON(w, http.StatusOK, resp)
}

// driftCheckForFeedback derives the drift check inputs from the stored
// schedule. Planned duration is read here, at feedback time, so a concurrent
// block edit cannot skew the comparison.
func (s *Server) driftCheckForFeedback(fb models.BlockFeedback) (drift.CheckResult, bool) {
	if fb.ActualTimeSpent == nil || fb.Skipped {
		return drift.CheckResult{}, false
	}

	sched, err := s.store.GetSchedule(fb.ScheduleDate)
	if err != nil {
		logger.Warn("drift check skipped: schedule unavailable", "date", fb.ScheduleDate, "err", err)
		return drift.CheckResult{}, false
	}
	block, err := schedule.FindBlock(sched, fb.BlockStartTime)
	if err != nil {
		logger.Warn("drift check skipped: block not found", "date", fb.ScheduleDate, "start", fb.BlockStartTime)
		return drift.CheckResult{}, false
	}

	start, err1 := utils.ParseTimeToMinutes(block.Start)
	end, err2 := utils.ParseTimeToMinutes(block.End)
	if err1 != nil || err2 != nil || end <= start {
		return drift.CheckResult{}, false
	}

	result, err := s.detector.Check(fb.ScheduleDate, fb.BlockStartTime, block.Title, end-start, *fb.ActualTimeSpent)
	if err != nil {
		logger.Warn("drift check failed", "date", fb.ScheduleDate, "start", fb.BlockStartTime, "err", err)
		return drift.CheckResult{}, false
	}
	return result, true
}
